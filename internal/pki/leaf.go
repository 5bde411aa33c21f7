// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package pki

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
)

// IssueLeaf generates a new key and certificate signed by root. The subject
// common name is required; dnsNames and ipAddresses are optional subject
// alternative names. Issuance builds a PKCS #10 signing request that binds
// the new public key to the subject, signs it against the authority, then
// verifies the result before returning it. A leaf that cannot be verified
// against its own issuer is never returned.
func (root *RootCertificateAuthority) IssueLeaf(
	commonName string, dnsNames []string, ipAddresses []net.IP, validityDays int,
) (*LeafCertificate, error) {
	if commonName == "" {
		return nil, fmt.Errorf("%w: common name is required", ErrMissingRequired)
	}
	if !RootIsValid(root) {
		return nil, ErrInvalidCertificateAuthority
	}

	var leaf LeafCertificate

	key, err := generateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	leaf.PrivateKey.rsa = key

	request, err := newSigningRequest(key, commonName, dnsNames, ipAddresses)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningRequest, err)
	}

	der, err := signLeafCertificate(root, request, root.serials.Next(), validityDays)
	if err == nil {
		leaf.Certificate.x509, err = x509.ParseCertificate(der)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateEncoding, err)
	}

	// A freshly minted leaf that does not chain to its own authority
	// indicates a key mismatch or tooling bug.
	if !root.LeafIsValid(&leaf) {
		return nil, fmt.Errorf("%w: %q not verifiable by %q",
			ErrChainValidation, commonName, root.Certificate.CommonName())
	}

	return &leaf, nil
}

// newSigningRequest builds and self-checks a PKCS #10 certificate signing
// request for key and the given subject.
func newSigningRequest(
	key *rsa.PrivateKey, commonName string, dnsNames []string, ipAddresses []net.IP,
) (*x509.CertificateRequest, error) {
	template := &x509.CertificateRequest{
		DNSNames:           dnsNames,
		IPAddresses:        ipAddresses,
		SignatureAlgorithm: certificateSignatureAlgorithm,
		Subject: pkix.Name{
			CommonName: commonName,
		},
	}

	der, err := x509.CreateCertificateRequest(rand.Reader, template, key)
	if err != nil {
		return nil, err
	}

	request, err := x509.ParseCertificateRequest(der)
	if err == nil {
		err = request.CheckSignature()
	}
	return request, err
}

// signLeafCertificate signs request against root, producing an end-entity
// certificate in DER format. The certificate carries the extended key usages
// for both server and client authentication because mongod presents the same
// certificate when it dials other replica set members.
func signLeafCertificate(
	root *RootCertificateAuthority, request *x509.CertificateRequest,
	serialNumber *big.Int, validityDays int,
) ([]byte, error) {
	now := currentTime()
	template := &x509.Certificate{
		BasicConstraintsValid: true,
		DNSNames:              request.DNSNames,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
			x509.ExtKeyUsageClientAuth,
		},
		IPAddresses:        request.IPAddresses,
		KeyUsage:           x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		NotBefore:          now.Add(beforeInterval),
		NotAfter:           now.Add(validity(validityDays)),
		SerialNumber:       serialNumber,
		SignatureAlgorithm: certificateSignatureAlgorithm,
		Subject:            request.Subject,
	}

	return x509.CreateCertificate(rand.Reader, template,
		root.Certificate.x509, request.PublicKey, root.PrivateKey.rsa)
}
