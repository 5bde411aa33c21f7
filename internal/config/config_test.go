// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/mongotls/bootstrap/internal/naming"
)

func TestDefault(t *testing.T) {
	p := Default()

	assert.Equal(t, p.CommonName, "mongodb-ca")
	assert.Equal(t, p.ValidityDays, 3650)
	assert.Equal(t, p.Service, "mongodb")
	assert.Equal(t, p.HeadlessService, "mongodb-headless")
	assert.Equal(t, p.CASecret, naming.CASecret)
	assert.Equal(t, p.Server.Secret, naming.ServerSecret)
	assert.Equal(t, p.Client.Secret, naming.ClientSecret)
	assert.Equal(t, p.Client.CommonName, "mongodb-client")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(`
commonName: my-ca
validityDays: 30
server:
  dnsNames: [mongodb.example.com]
  ipAddresses: [127.0.0.1]
`), 0o600))

	p, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, p.CommonName, "my-ca")
	assert.Equal(t, p.ValidityDays, 30)
	assert.DeepEqual(t, p.Server.DNSNames, []string{"mongodb.example.com"})
	assert.DeepEqual(t, p.Server.IPAddresses, []string{"127.0.0.1"})

	// defaults still apply to the rest
	assert.Equal(t, p.Service, "mongodb")
	assert.Equal(t, p.CASecret, naming.CASecret)

	t.Run("Missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Assert(t, err != nil)
	})

	t.Run("UnknownField", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		assert.NilError(t, os.WriteFile(bad, []byte("nonsense: true\n"), 0o600))

		_, err := Load(bad)
		assert.ErrorContains(t, err, "unable to parse profile")
	})
}
