// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package pki

import "errors"

var (
	// ErrMissingRequired is returned if a required parameter is missing
	ErrMissingRequired = errors.New("missing required parameter")

	// ErrKeyGeneration is returned if a private key or serial number cannot
	// be generated
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrCertificateEncoding is returned if a certificate subject or template
	// cannot be encoded and signed
	ErrCertificateEncoding = errors.New("certificate encoding failed")

	// ErrSigningRequest is returned if a certificate signing request cannot
	// be built from a subject and key pair
	ErrSigningRequest = errors.New("signing request failed")

	// ErrChainValidation is returned if a freshly issued certificate cannot
	// be verified against its issuing authority. Such a certificate must
	// never be published.
	ErrChainValidation = errors.New("chain validation failed")

	// ErrInvalidCertificateAuthority is returned if a certificate authority
	// (CA) has not been properly generated
	ErrInvalidCertificateAuthority = errors.New("invalid certificate authority")

	// ErrInvalidPEM is returned if encoded data is not a valid PEM block
	ErrInvalidPEM = errors.New("invalid pem encoded data")
)
