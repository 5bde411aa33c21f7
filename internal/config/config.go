// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package config describes the issuance profile: subjects, validity, and the
// names of the secrets everything is published under.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/mongotls/bootstrap/internal/naming"
)

// Leaf describes one end-entity certificate.
type Leaf struct {
	// CommonName overrides the derived subject. For the server leaf the
	// default is the FQDN of the service; for the client leaf it is a fixed
	// client identity.
	CommonName string `json:"commonName,omitempty"`

	// DNSNames are additional subject alternative names.
	DNSNames []string `json:"dnsNames,omitempty"`

	// IPAddresses are optional subject alternative names, as text.
	IPAddresses []string `json:"ipAddresses,omitempty"`

	// Secret is the name of the published secret.
	Secret string `json:"secret,omitempty"`
}

// Profile configures the whole issuance sequence. The zero value plus
// Default() matches what the MongoDB chart documentation walks through
// by hand.
type Profile struct {
	// CommonName is the subject of the self-signed authority.
	CommonName string `json:"commonName,omitempty"`

	// ValidityDays applies to the authority and every leaf issued under it.
	ValidityDays int `json:"validityDays,omitempty"`

	// Service is the name of the MongoDB service; the server certificate
	// subject is derived from it.
	Service string `json:"service,omitempty"`

	// Replicas is the number of replica set members. When set, the server
	// certificate covers the stable DNS name of each member pod.
	Replicas int `json:"replicas,omitempty"`

	// HeadlessService is the headless service governing member pods.
	// Defaults to the service name with a "-headless" suffix.
	HeadlessService string `json:"headlessService,omitempty"`

	// CASecret is the name of the secret holding the authority pair.
	CASecret string `json:"caSecret,omitempty"`

	Server Leaf `json:"server,omitempty"`
	Client Leaf `json:"client,omitempty"`
}

// Default returns the profile used when no file is given.
func Default() *Profile {
	p := &Profile{}
	p.complete()
	return p
}

// Load reads a YAML profile from path and fills in defaults for anything
// left unset.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := &Profile{}
	if err := yaml.UnmarshalStrict(data, p); err != nil {
		return nil, fmt.Errorf("unable to parse profile %q: %w", path, err)
	}

	p.complete()
	return p, nil
}

func (p *Profile) complete() {
	if p.CommonName == "" {
		p.CommonName = "mongodb-ca"
	}
	if p.ValidityDays <= 0 {
		p.ValidityDays = 3650
	}
	if p.Service == "" {
		p.Service = "mongodb"
	}
	if p.HeadlessService == "" {
		p.HeadlessService = p.Service + "-headless"
	}
	if p.CASecret == "" {
		p.CASecret = naming.CASecret
	}
	if p.Server.Secret == "" {
		p.Server.Secret = naming.LeafSecret(naming.RoleServer)
	}
	if p.Client.Secret == "" {
		p.Client.Secret = naming.LeafSecret(naming.RoleClient)
	}
	if p.Client.CommonName == "" {
		p.Client.CommonName = "mongodb-client"
	}
}
