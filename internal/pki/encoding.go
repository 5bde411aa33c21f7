// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package pki

import (
	"crypto/x509"
	"encoding"
	"encoding/pem"
	"fmt"
)

const (
	// pemLabelCertificate is the textual encoding label for an X.509 certificate
	// according to RFC 7468. See https://tools.ietf.org/html/rfc7468.
	pemLabelCertificate = "CERTIFICATE"

	// pemLabelRSAKey is the textual encoding label for a PKCS #1 RSA private
	// key, the format produced by `openssl genrsa`.
	pemLabelRSAKey = "RSA PRIVATE KEY"
)

var (
	_ encoding.TextMarshaler   = Certificate{}
	_ encoding.TextMarshaler   = (*Certificate)(nil)
	_ encoding.TextUnmarshaler = (*Certificate)(nil)
)

// MarshalText returns a PEM encoding of c that OpenSSL understands.
func (c Certificate) MarshalText() ([]byte, error) {
	if c.x509 == nil || len(c.x509.Raw) == 0 {
		_, err := x509.ParseCertificate(nil)
		return nil, err
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  pemLabelCertificate,
		Bytes: c.x509.Raw,
	}), nil
}

// UnmarshalText populates c from its PEM encoding.
func (c *Certificate) UnmarshalText(data []byte) error {
	block, _ := pem.Decode(data)

	if block == nil || block.Type != pemLabelCertificate {
		return fmt.Errorf("%w: not a PEM-encoded certificate", ErrInvalidPEM)
	}

	parsed, err := x509.ParseCertificate(block.Bytes)
	if err == nil {
		c.x509 = parsed
	}
	return err
}

var (
	_ encoding.TextMarshaler   = PrivateKey{}
	_ encoding.TextMarshaler   = (*PrivateKey)(nil)
	_ encoding.TextUnmarshaler = (*PrivateKey)(nil)
)

// MarshalText returns a PEM encoding of k that OpenSSL understands.
func (k PrivateKey) MarshalText() ([]byte, error) {
	if k.rsa == nil {
		return nil, fmt.Errorf("%w: no private key", ErrInvalidPEM)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  pemLabelRSAKey,
		Bytes: x509.MarshalPKCS1PrivateKey(k.rsa),
	}), nil
}

// UnmarshalText populates k from its PEM encoding.
func (k *PrivateKey) UnmarshalText(data []byte) error {
	block, _ := pem.Decode(data)

	if block == nil || block.Type != pemLabelRSAKey {
		return fmt.Errorf("%w: not a PEM-encoded private key", ErrInvalidPEM)
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		k.rsa = key
	}
	return err
}

// ParseCertificate parses a PEM encoded certificate.
func ParseCertificate(data []byte) (Certificate, error) {
	var certificate Certificate
	err := certificate.UnmarshalText(data)
	return certificate, err
}

// ParsePrivateKey parses a PEM encoded private key.
func ParsePrivateKey(data []byte) (PrivateKey, error) {
	var key PrivateKey
	err := key.UnmarshalText(data)
	return key, err
}
