// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package pki

import (
	"crypto/x509"
	"errors"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestCertificateEqual(t *testing.T) {
	zero := Certificate{}
	assert.Assert(t, zero.Equal(zero))

	root, err := NewRootCertificateAuthority("localhost", 0)
	assert.NilError(t, err)
	assert.Assert(t, root.Certificate.Equal(root.Certificate))

	assert.Assert(t, !root.Certificate.Equal(zero))
	assert.Assert(t, !zero.Equal(root.Certificate))

	other, err := NewRootCertificateAuthority("localhost", 0)
	assert.NilError(t, err)
	assert.Assert(t, !root.Certificate.Equal(other.Certificate))

	// DeepEqual calls the Equal method, so no cmp.Option are necessary.
	assert.DeepEqual(t, zero, zero)
	assert.DeepEqual(t, root.Certificate, root.Certificate)
}

func TestPrivateKeyEqual(t *testing.T) {
	zero := PrivateKey{}
	assert.Assert(t, zero.Equal(zero))

	root, err := NewRootCertificateAuthority("localhost", 0)
	assert.NilError(t, err)
	assert.Assert(t, root.PrivateKey.Equal(root.PrivateKey))

	assert.Assert(t, !root.PrivateKey.Equal(zero))
	assert.Assert(t, !zero.Equal(root.PrivateKey))

	other, err := NewRootCertificateAuthority("localhost", 0)
	assert.NilError(t, err)
	assert.Assert(t, !root.PrivateKey.Equal(other.PrivateKey))
}

func TestNewRootCertificateAuthority(t *testing.T) {
	_, err := NewRootCertificateAuthority("", 0)
	assert.ErrorIs(t, err, ErrMissingRequired)

	root, err := NewRootCertificateAuthority("mongodb-ca", 0)
	assert.NilError(t, err)
	assert.Assert(t, RootIsValid(root))

	cert := root.Certificate.x509
	assert.Equal(t, cert.Subject.CommonName, "mongodb-ca")
	assert.Assert(t, cert.IsCA)
	assert.Assert(t, cert.BasicConstraintsValid)
	assert.Equal(t, cert.SignatureAlgorithm, x509.SHA256WithRSA)
	assert.Equal(t, root.PrivateKey.rsa.N.BitLen(), 4096)

	// issuer == subject on a self-signed certificate
	assert.DeepEqual(t, cert.Issuer.CommonName, cert.Subject.CommonName)
	assert.NilError(t, cert.CheckSignatureFrom(cert))

	t.Run("DefaultValidity", func(t *testing.T) {
		window := cert.NotAfter.Sub(cert.NotBefore)
		assert.Equal(t, window, 3650*24*time.Hour+time.Hour)
		assert.Assert(t, cert.NotAfter.After(time.Now().AddDate(9, 11, 0)))
	})

	t.Run("CallerValidity", func(t *testing.T) {
		short, err := NewRootCertificateAuthority("mongodb-ca", 30)
		assert.NilError(t, err)

		window := short.Certificate.x509.NotAfter.Sub(short.Certificate.x509.NotBefore)
		assert.Equal(t, window, 30*24*time.Hour+time.Hour)
	})
}

func TestRootIsValid(t *testing.T) {
	t.Run("NilOrZero", func(t *testing.T) {
		assert.Assert(t, !RootIsValid(nil))
		assert.Assert(t, !RootIsValid(&RootCertificateAuthority{}))
	})

	t.Run("WrongKey", func(t *testing.T) {
		root, err := NewRootCertificateAuthority("localhost", 0)
		assert.NilError(t, err)

		other, err := NewRootCertificateAuthority("localhost", 0)
		assert.NilError(t, err)

		root.PrivateKey = other.PrivateKey
		assert.Assert(t, !RootIsValid(root))
	})

	t.Run("LeafIsNotAuthority", func(t *testing.T) {
		root, err := NewRootCertificateAuthority("localhost", 0)
		assert.NilError(t, err)

		leaf, err := root.IssueLeaf("mongodb", nil, nil, 0)
		assert.NilError(t, err)

		masquerade := &RootCertificateAuthority{
			Certificate: leaf.Certificate,
			PrivateKey:  leaf.PrivateKey,
		}
		assert.Assert(t, !RootIsValid(masquerade))
	})
}

func TestIssueLeaf(t *testing.T) {
	root, err := NewRootCertificateAuthority("localhost", 0)
	assert.NilError(t, err)

	_, err = root.IssueLeaf("", nil, nil, 0)
	assert.ErrorIs(t, err, ErrMissingRequired)

	t.Run("InvalidAuthority", func(t *testing.T) {
		_, err := (&RootCertificateAuthority{}).IssueLeaf("mongodb", nil, nil, 0)
		assert.ErrorIs(t, err, ErrInvalidCertificateAuthority)
	})

	commonName := "mongodb.default.svc.cluster.local"
	dnsNames := []string{commonName, "mongodb.default.svc", "mongodb"}
	ips := []net.IP{net.ParseIP("127.0.0.1")}

	leaf, err := root.IssueLeaf(commonName, dnsNames, ips, 0)
	assert.NilError(t, err)
	assert.Assert(t, root.LeafIsValid(leaf))
	assert.Equal(t, leaf.Certificate.CommonName(), commonName)
	assert.DeepEqual(t, leaf.Certificate.DNSNames(), dnsNames)

	cert := leaf.Certificate.x509
	assert.Assert(t, !cert.IsCA)
	assert.Equal(t, cert.SignatureAlgorithm, x509.SHA256WithRSA)
	assert.Equal(t, cert.Issuer.CommonName, "localhost")
	assert.Equal(t, len(cert.IPAddresses), 1)

	t.Run("ChainsToItsIssuer", func(t *testing.T) {
		pool := x509.NewCertPool()
		pool.AddCert(root.Certificate.x509)

		_, err := cert.Verify(x509.VerifyOptions{
			DNSName: commonName,
			Roots:   pool,
		})
		assert.NilError(t, err)
	})

	t.Run("RejectedByUnrelatedAuthority", func(t *testing.T) {
		unrelated, err := NewRootCertificateAuthority("localhost", 0)
		assert.NilError(t, err)

		pool := x509.NewCertPool()
		pool.AddCert(unrelated.Certificate.x509)

		_, err = cert.Verify(x509.VerifyOptions{Roots: pool})
		assert.Assert(t, err != nil)
		assert.Assert(t, !unrelated.LeafIsValid(leaf))
	})

	t.Run("SerialNumbersIncrease", func(t *testing.T) {
		one, err := root.IssueLeaf("mongodb", nil, nil, 0)
		assert.NilError(t, err)
		two, err := root.IssueLeaf("mongodb", nil, nil, 0)
		assert.NilError(t, err)

		first := one.Certificate.x509.SerialNumber
		second := two.Certificate.x509.SerialNumber
		assert.Assert(t, second.Cmp(first) > 0, "expected %v > %v", second, first)
	})
}

func TestLeafIsValid(t *testing.T) {
	root, err := NewRootCertificateAuthority("localhost", 0)
	assert.NilError(t, err)

	leaf, err := root.IssueLeaf("mongodb", nil, nil, 0)
	assert.NilError(t, err)

	assert.Assert(t, !root.LeafIsValid(nil))
	assert.Assert(t, !root.LeafIsValid(&LeafCertificate{}))
	assert.Assert(t, root.LeafIsValid(leaf))

	t.Run("WrongKey", func(t *testing.T) {
		other, err := root.IssueLeaf("mongodb", nil, nil, 0)
		assert.NilError(t, err)

		swapped := &LeafCertificate{
			Certificate: leaf.Certificate,
			PrivateKey:  other.PrivateKey,
		}
		assert.Assert(t, !root.LeafIsValid(swapped))
	})

	t.Run("PastRenewalTime", func(t *testing.T) {
		original := currentTime
		t.Cleanup(func() { currentTime = original })

		// Three quarters of the way through the validity window is past the
		// renewal time but before expiration.
		currentTime = func() time.Time {
			return time.Now().Add(validity(0) * 3 / 4)
		}
		assert.Assert(t, !root.LeafIsValid(leaf))
	})
}

func TestRegenerateLeafWhenNecessary(t *testing.T) {
	root, err := NewRootCertificateAuthority("localhost", 0)
	assert.NilError(t, err)

	dnsNames := []string{"mongodb.default.svc", "mongodb"}
	leaf, err := root.IssueLeaf(dnsNames[0], dnsNames, nil, 0)
	assert.NilError(t, err)

	t.Run("KeptWhenValid", func(t *testing.T) {
		regenerated, err := root.RegenerateLeafWhenNecessary(leaf, dnsNames[0], dnsNames, nil, 0)
		assert.NilError(t, err)
		assert.Assert(t, regenerated == leaf, "expected the same pointer")
	})

	t.Run("ReplacedWhenSubjectChanges", func(t *testing.T) {
		regenerated, err := root.RegenerateLeafWhenNecessary(leaf, "other", nil, nil, 0)
		assert.NilError(t, err)
		assert.Assert(t, regenerated != leaf)
		assert.Equal(t, regenerated.Certificate.CommonName(), "other")
	})

	t.Run("ReplacedWhenAddressesChange", func(t *testing.T) {
		ips := []net.IP{net.ParseIP("10.0.0.7")}

		// The existing leaf has no IP addresses, so it must be reissued.
		regenerated, err := root.RegenerateLeafWhenNecessary(leaf, dnsNames[0], dnsNames, ips, 0)
		assert.NilError(t, err)
		assert.Assert(t, regenerated != leaf)
		assert.Equal(t, len(regenerated.Certificate.x509.IPAddresses), 1)
		assert.Assert(t, regenerated.Certificate.x509.IPAddresses[0].Equal(ips[0]))

		kept, err := root.RegenerateLeafWhenNecessary(regenerated, dnsNames[0], dnsNames, ips, 0)
		assert.NilError(t, err)
		assert.Assert(t, kept == regenerated, "expected the same pointer")
	})

	t.Run("ReplacedWhenRootChanges", func(t *testing.T) {
		moved, err := NewRootCertificateAuthority("localhost", 0)
		assert.NilError(t, err)

		regenerated, err := moved.RegenerateLeafWhenNecessary(leaf, dnsNames[0], dnsNames, nil, 0)
		assert.NilError(t, err)
		assert.Assert(t, regenerated != leaf)
		assert.Assert(t, moved.LeafIsValid(regenerated))
	})
}

func TestParseRootCertificateAuthority(t *testing.T) {
	root, err := NewRootCertificateAuthority("localhost", 0)
	assert.NilError(t, err)

	keyPEM, err := root.PrivateKey.MarshalText()
	assert.NilError(t, err)
	certPEM, err := root.Certificate.MarshalText()
	assert.NilError(t, err)

	parsed, err := ParseRootCertificateAuthority(keyPEM, certPEM)
	assert.NilError(t, err)
	assert.Assert(t, RootIsValid(parsed))
	assert.Assert(t, root.Certificate.Equal(parsed.Certificate))
	assert.Assert(t, root.PrivateKey.Equal(parsed.PrivateKey))

	// A reconstituted authority can still issue.
	leaf, err := parsed.IssueLeaf("mongodb", nil, nil, 0)
	assert.NilError(t, err)
	assert.Assert(t, root.LeafIsValid(leaf))

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseRootCertificateAuthority([]byte("nope"), certPEM)
		assert.Assert(t, errors.Is(err, ErrInvalidPEM))

		_, err = ParseRootCertificateAuthority(keyPEM, []byte("nope"))
		assert.Assert(t, errors.Is(err, ErrInvalidPEM))
	})
}

func TestIssueLeafOpenSSL(t *testing.T) {
	openssl, err := exec.LookPath("openssl")
	if err != nil {
		t.Skip(`requires "openssl" executable`)
	} else {
		output, err := exec.Command(openssl, "version", "-a").CombinedOutput()
		assert.NilError(t, err)
		t.Logf("using %q:\n%s", openssl, output)
	}

	root, err := NewRootCertificateAuthority("localhost", 0)
	assert.NilError(t, err)

	leaf, err := root.IssueLeaf("mongodb", []string{"mongodb"}, nil, 0)
	assert.NilError(t, err)

	basicOpenSSLVerify(t, openssl, root.Certificate, leaf.Certificate)
}

func basicOpenSSLVerify(t *testing.T, openssl string, root, leaf Certificate) {
	verify := func(t testing.TB, args ...string) {
		t.Helper()
		// #nosec G204 -- args from this test
		cmd := exec.Command(openssl, append([]string{"verify"}, args...)...)

		output, err := cmd.CombinedOutput()
		assert.NilError(t, err, "%q\n%s", cmd.Args, output)
	}

	dir := t.TempDir()

	rootFile := filepath.Join(dir, "root.crt")
	rootBytes, err := root.MarshalText()
	assert.NilError(t, err)
	assert.NilError(t, os.WriteFile(rootFile, rootBytes, 0o600))

	// The root certificate cannot be verified independently because it is
	// self-signed. It is checked below by being the trust anchor of the leaf.

	leafFile := filepath.Join(dir, "leaf.crt")
	leafBytes, err := leaf.MarshalText()
	assert.NilError(t, err)
	assert.NilError(t, os.WriteFile(leafFile, leafBytes, 0o600))

	// Older versions print the result to stdout rather than the exit code.
	output, _ := exec.Command(openssl, "verify", "-CAfile", rootFile, leafFile).CombinedOutput()
	if !strings.Contains(string(output), ": OK") {
		verify(t, "-CAfile", rootFile, leafFile)
	}
}
