// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package pki

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"math"
	"math/big"
	"sync/atomic"
	"time"
)

// certificateSignatureAlgorithm is RSA with SHA-256, matching what the
// MongoDB documentation shows for hand-generated certificates.
const certificateSignatureAlgorithm = x509.SHA256WithRSA

// rsaKeySize is the modulus size of every generated key pair.
const rsaKeySize = 4096

// defaultValidityDays is used when a caller does not give a validity window.
const defaultValidityDays = 3650

// beforeInterval backdates certificates slightly to tolerate clock skew
// between the issuing machine and the cluster.
const beforeInterval = -1 * time.Hour

// currentTime returns the current local time. It is a variable so it can be
// replaced during testing.
var currentTime = time.Now

// generateKey returns a random RSA key with a 4096-bit modulus.
func generateKey() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, rsaKeySize)
}

// serialSequence allocates certificate serial numbers for one authority.
// The sequence starts at a random offset and increases monotonically, so
// concurrent issuance never reuses a serial and two authorities are very
// unlikely to overlap.
type serialSequence struct {
	next atomic.Int64
}

func newSerialSequence() (*serialSequence, error) {
	offset, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64>>1))
	if err != nil {
		return nil, err
	}

	sequence := new(serialSequence)
	sequence.next.Store(offset.Int64())
	return sequence, nil
}

// Next returns a serial number that has not been returned before.
func (s *serialSequence) Next() *big.Int {
	return big.NewInt(s.next.Add(1))
}

// validity converts days to a duration, substituting the default window
// when days is not positive.
func validity(days int) time.Duration {
	if days <= 0 {
		days = defaultValidityDays
	}
	return time.Duration(days) * 24 * time.Hour
}
