// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package naming

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/mongotls/bootstrap/naming")
