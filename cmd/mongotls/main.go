// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/mongotls/bootstrap/internal/cli"

func main() {
	cli.Execute()
}
