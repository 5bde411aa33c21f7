// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package bundle packages a certificate and its private key into the single
// combined PEM artifact that mongod and mongosh expect for their
// certificateKeyFile options.
//
// The runbook this replaces concatenated key and certificate by hand, in a
// different order at different call sites. Bundle fixes one canonical order,
// certificate first then private key, and makes any other order
// unrepresentable.
package bundle

import (
	"bytes"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/mongotls/bootstrap/internal/pki"
)

// ErrEncoding is returned if a constituent artifact is not valid PEM of the
// expected kind.
var ErrEncoding = errors.New("malformed credential encoding")

const (
	labelCertificate = "CERTIFICATE"
	labelRSAKey      = "RSA PRIVATE KEY"
)

// Bundle is a combined credential: one certificate followed by its private
// key, both PEM encoded. The zero value is empty and unusable.
type Bundle struct {
	certificate []byte
	privateKey  []byte
}

// New builds a Bundle from PEM encoded constituents, validating each.
func New(certPEM, keyPEM []byte) (Bundle, error) {
	if err := expectPEM(certPEM, labelCertificate); err != nil {
		return Bundle{}, err
	}
	if err := expectPEM(keyPEM, labelRSAKey); err != nil {
		return Bundle{}, err
	}

	return Bundle{
		certificate: bytes.Clone(certPEM),
		privateKey:  bytes.Clone(keyPEM),
	}, nil
}

// FromLeaf packages a leaf certificate and its key.
func FromLeaf(leaf *pki.LeafCertificate) (Bundle, error) {
	return fromPair(leaf.Certificate, leaf.PrivateKey)
}

// FromRoot packages a certificate authority and its key. This is what the
// chart's secret exposes to sidecars that need to issue on their own.
func FromRoot(root *pki.RootCertificateAuthority) (Bundle, error) {
	return fromPair(root.Certificate, root.PrivateKey)
}

func fromPair(certificate pki.Certificate, key pki.PrivateKey) (Bundle, error) {
	certPEM, err := certificate.MarshalText()
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	keyPEM, err := key.MarshalText()
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return New(certPEM, keyPEM)
}

// Bytes returns the combined artifact, certificate first.
func (b Bundle) Bytes() []byte {
	return append(bytes.Clone(b.certificate), b.privateKey...)
}

// Split returns the certificate and private key PEM exactly as they were
// provided to New.
func (b Bundle) Split() (certPEM, keyPEM []byte) {
	return bytes.Clone(b.certificate), bytes.Clone(b.privateKey)
}

// Parse splits a combined artifact back into its certificate and private key
// PEM. The certificate must come first; anything else fails with ErrEncoding.
func Parse(data []byte) (Bundle, error) {
	block, rest := pem.Decode(data)
	if block == nil || block.Type != labelCertificate {
		return Bundle{}, fmt.Errorf("%w: expected a leading certificate", ErrEncoding)
	}

	// The certificate PEM is everything up to the start of the remainder.
	certPEM := data[:len(data)-len(rest)]

	block, after := pem.Decode(rest)
	if block == nil || block.Type != labelRSAKey {
		return Bundle{}, fmt.Errorf("%w: expected a trailing private key", ErrEncoding)
	}
	if len(bytes.TrimSpace(after)) != 0 {
		return Bundle{}, fmt.Errorf("%w: unexpected trailing data", ErrEncoding)
	}

	keyPEM := rest[:len(rest)-len(after)]
	return New(certPEM, keyPEM)
}

func expectPEM(data []byte, label string) error {
	block, rest := pem.Decode(data)
	if block == nil || block.Type != label {
		return fmt.Errorf("%w: expected %q", ErrEncoding, label)
	}
	if len(bytes.TrimSpace(rest)) != 0 {
		return fmt.Errorf("%w: unexpected data after %q", ErrEncoding, label)
	}
	return nil
}
