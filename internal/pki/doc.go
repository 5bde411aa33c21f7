// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package pki provides types and functions to support the TLS trust
// infrastructure of a MongoDB deployment. It enforces a two layer system
// of one certificate authority and the leaf certificates issued under it.
//
// NewRootCertificateAuthority() creates a new root CA.
// IssueLeaf() creates a new leaf certificate signed by that CA.
//
// Certificate and PrivateKey are primitives that can be marshaled.
package pki
