// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package secrets

import "errors"

var (
	// ErrSecretNotFound is returned if the named secret does not exist
	ErrSecretNotFound = errors.New("secret not found")

	// ErrFieldNotFound is returned if the secret exists but lacks the field
	ErrFieldNotFound = errors.New("field not found")

	// ErrEncoding is returned if a stored field value is not valid base64
	ErrEncoding = errors.New("malformed base64 data")
)
