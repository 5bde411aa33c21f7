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
	"time"
)

// Certificate represents an X.509 certificate that conforms to the Internet
// PKI Profile, RFC 5280.
type Certificate struct{ x509 *x509.Certificate }

// PrivateKey represents the private key of a Certificate.
type PrivateKey struct{ rsa *rsa.PrivateKey }

// Equal reports whether c and other have the same value.
func (c Certificate) Equal(other Certificate) bool {
	return c.x509.Equal(other.x509)
}

// CommonName returns a copy of the certificate common name (ASN.1 OID 2.5.4.3).
func (c Certificate) CommonName() string {
	if c.x509 == nil {
		return ""
	}
	return c.x509.Subject.CommonName
}

// DNSNames returns a copy of the certificate subject alternative names
// (ASN.1 OID 2.5.29.17) that are DNS names.
func (c Certificate) DNSNames() []string {
	if c.x509 == nil || len(c.x509.DNSNames) == 0 {
		return nil
	}
	return append([]string{}, c.x509.DNSNames...)
}

// NotAfter returns the end of the certificate validity window.
func (c Certificate) NotAfter() time.Time {
	if c.x509 == nil {
		return time.Time{}
	}
	return c.x509.NotAfter
}

// hasSubject checks that c has these values in its subject, including every
// requested IP address.
func (c Certificate) hasSubject(commonName string, dnsNames []string, ipAddresses []net.IP) bool {
	ok := c.x509 != nil &&
		c.x509.Subject.CommonName == commonName &&
		len(c.x509.DNSNames) == len(dnsNames) &&
		len(c.x509.IPAddresses) == len(ipAddresses)

	for i := range dnsNames {
		ok = ok && c.x509.DNSNames[i] == dnsNames[i]
	}
	for i := range ipAddresses {
		ok = ok && c.x509.IPAddresses[i].Equal(ipAddresses[i])
	}

	return ok
}

// Equal reports whether k and other have the same value.
func (k PrivateKey) Equal(other PrivateKey) bool {
	if k.rsa == nil || other.rsa == nil {
		return k.rsa == other.rsa
	}
	return k.rsa.Equal(other.rsa)
}

// LeafCertificate is a certificate and private key pair that can be validated
// by RootCertificateAuthority.
type LeafCertificate struct {
	Certificate Certificate
	PrivateKey  PrivateKey
}

// RootCertificateAuthority is a certificate and private key pair that issues
// leaf certificates. It owns the serial number state shared by every
// certificate issued under it.
type RootCertificateAuthority struct {
	Certificate Certificate
	PrivateKey  PrivateKey

	serials *serialSequence
}

// NewRootCertificateAuthority generates a new key and self-signed certificate
// for issuing other certificates. The certificate subject is the provided
// common name and the certificate expires validityDays from now.
func NewRootCertificateAuthority(commonName string, validityDays int) (*RootCertificateAuthority, error) {
	if commonName == "" {
		return nil, fmt.Errorf("%w: common name is required", ErrMissingRequired)
	}

	var root RootCertificateAuthority

	key, err := generateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	root.serials, err = newSerialSequence()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	root.PrivateKey.rsa = key
	der, err := generateRootCertificate(key, root.serials.Next(), commonName, validityDays)
	if err == nil {
		root.Certificate.x509, err = x509.ParseCertificate(der)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateEncoding, err)
	}

	return &root, nil
}

// ParseRootCertificateAuthority takes PEM encoded private key and certificate
// representations, such as those fetched back from the secret store, and
// reconstitutes the authority. Serial number state is not persisted, so the
// sequence restarts at a new random offset.
func ParseRootCertificateAuthority(keyPEM, certPEM []byte) (*RootCertificateAuthority, error) {
	var root RootCertificateAuthority
	var err error

	if root.PrivateKey, err = ParsePrivateKey(keyPEM); err != nil {
		return nil, err
	}
	if root.Certificate, err = ParseCertificate(certPEM); err != nil {
		return nil, err
	}
	if root.serials, err = newSerialSequence(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	return &root, nil
}

// RootIsValid checks if root is valid according to this package's policies.
func RootIsValid(root *RootCertificateAuthority) bool {
	if root == nil || root.Certificate.x509 == nil {
		return false
	}

	trusted := x509.NewCertPool()
	trusted.AddCert(root.Certificate.x509)

	// Verify the certificate expiration, basic constraints, key usages, and
	// critical extensions. Trust the certificate as an authority so it is not
	// compared to system roots or sent to the platform certificate verifier.
	_, err := root.Certificate.x509.Verify(x509.VerifyOptions{
		Roots: trusted,
	})

	// Its expiration, key usages, and critical extensions are good.
	ok := err == nil

	// It is an authority with the Subject Key Identifier extension.
	// - https://tools.ietf.org/html/rfc5280#section-4.2.1.2
	ok = ok &&
		root.Certificate.x509.BasicConstraintsValid &&
		root.Certificate.x509.IsCA &&
		len(root.Certificate.x509.SubjectKeyId) > 0

	// It is signed by this private key.
	ok = ok &&
		root.PrivateKey.rsa != nil &&
		root.PrivateKey.rsa.PublicKey.Equal(root.Certificate.x509.PublicKey)

	return ok
}

// LeafIsValid checks if leaf is valid according to this package's policies
// and is signed by root.
func (root *RootCertificateAuthority) LeafIsValid(leaf *LeafCertificate) bool {
	if root == nil || root.Certificate.x509 == nil {
		return false
	}
	if leaf == nil || leaf.Certificate.x509 == nil {
		return false
	}

	trusted := x509.NewCertPool()
	trusted.AddCert(root.Certificate.x509)

	_, err := leaf.Certificate.x509.Verify(x509.VerifyOptions{
		Roots: trusted,
	})

	// Its expiration, name constraints, key usages, and critical extensions are good.
	ok := err == nil

	// It is not an authority.
	ok = ok &&
		leaf.Certificate.x509.BasicConstraintsValid &&
		!leaf.Certificate.x509.IsCA

	// It is signed by this private key.
	ok = ok &&
		leaf.PrivateKey.rsa != nil &&
		leaf.PrivateKey.rsa.PublicKey.Equal(leaf.Certificate.x509.PublicKey)

	// It is not yet past the renewal time, defined as one third of the
	// validity window before expiration.
	ok = ok && isBeforeRenewalTime(leaf.Certificate.x509.NotBefore,
		leaf.Certificate.x509.NotAfter)

	return ok
}

const renewalRatio = 3

// isBeforeRenewalTime checks if the result of `currentTime` is before the
// renewal time of 1/3rd the validity window ahead of the certificate's expiry.
func isBeforeRenewalTime(before, after time.Time) bool {
	renewalDuration := after.Sub(before) / renewalRatio
	renewalTime := after.Add(-1 * renewalDuration)
	return currentTime().Before(renewalTime)
}

// RegenerateLeafWhenNecessary returns leaf when it is valid according to this
// package's policies, signed by root, and has commonName, dnsNames, and
// ipAddresses in its subject. Otherwise, it returns a new key and certificate
// signed by root.
func (root *RootCertificateAuthority) RegenerateLeafWhenNecessary(
	leaf *LeafCertificate, commonName string, dnsNames []string,
	ipAddresses []net.IP, validityDays int,
) (*LeafCertificate, error) {
	ok := root.LeafIsValid(leaf) &&
		leaf.Certificate.hasSubject(commonName, dnsNames, ipAddresses)

	if ok {
		return leaf, nil
	}
	return root.IssueLeaf(commonName, dnsNames, ipAddresses, validityDays)
}

// generateRootCertificate creates a self-signed x509 certificate with an RSA
// signature using the SHA-256 algorithm.
func generateRootCertificate(
	privateKey *rsa.PrivateKey, serialNumber *big.Int, commonName string, validityDays int,
) ([]byte, error) {
	now := currentTime()
	template := &x509.Certificate{
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		MaxPathLenZero:        true, // there are no intermediate authorities
		NotBefore:             now.Add(beforeInterval),
		NotAfter:              now.Add(validity(validityDays)),
		SerialNumber:          serialNumber,
		SignatureAlgorithm:    certificateSignatureAlgorithm,
		Subject: pkix.Name{
			CommonName: commonName,
		},
	}

	// a root certificate has no parent, so pass in the template twice
	return x509.CreateCertificate(rand.Reader, template, template,
		privateKey.Public(), privateKey)
}

// IPAddresses is a helper that parses textual addresses, dropping any that
// do not parse.
func IPAddresses(addresses []string) []net.IP {
	var ips []net.IP
	for _, a := range addresses {
		if ip := net.ParseIP(a); ip != nil {
			ips = append(ips, ip)
		}
	}
	return ips
}
