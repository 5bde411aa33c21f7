// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap composes the issuance steps into an idempotent sequence.
// Each Ensure function reads what is already published, keeps it when it is
// still good, and regenerates and republishes it when it is not, so the whole
// sequence can simply be re-run after any failure.
package bootstrap

import (
	"context"
	"errors"

	"github.com/mongotls/bootstrap/internal/bundle"
	"github.com/mongotls/bootstrap/internal/config"
	"github.com/mongotls/bootstrap/internal/logging"
	"github.com/mongotls/bootstrap/internal/naming"
	"github.com/mongotls/bootstrap/internal/pki"
	"github.com/mongotls/bootstrap/internal/secrets"
)

// Bootstrapper runs the issuance sequence against one namespace.
type Bootstrapper struct {
	Publisher *secrets.Publisher
	Profile   *config.Profile
	Namespace string
}

// New returns a Bootstrapper for namespace using profile.
func New(publisher *secrets.Publisher, profile *config.Profile, namespace string) *Bootstrapper {
	return &Bootstrapper{Publisher: publisher, Profile: profile, Namespace: namespace}
}

// ignoreNotFound maps the absence of a secret or field to nil so callers can
// distinguish "generate a new one" from a store failure.
func ignoreNotFound(err error) error {
	if errors.Is(err, secrets.ErrSecretNotFound) || errors.Is(err, secrets.ErrFieldNotFound) {
		return nil
	}
	return err
}

// EnsureRootCA makes sure the certificate authority, stored in the relevant
// secret, exists and is not bad due to being expired, formatted incorrectly,
// etc. If it is bad for some reason, a new authority is generated and
// published.
func (b *Bootstrapper) EnsureRootCA(ctx context.Context) (*pki.RootCertificateAuthority, error) {
	log := logging.FromContext(ctx)

	certPEM, certErr := b.Publisher.Fetch(ctx, b.Profile.CASecret, naming.FieldCACertificate)
	if err := ignoreNotFound(certErr); err != nil {
		return nil, err
	}
	keyPEM, keyErr := b.Publisher.Fetch(ctx, b.Profile.CASecret, naming.FieldCAKey)
	if err := ignoreNotFound(keyErr); err != nil {
		return nil, err
	}

	if certErr == nil && keyErr == nil {
		root, err := pki.ParseRootCertificateAuthority(keyPEM, certPEM)
		if err == nil && pki.RootIsValid(root) {
			log.V(1).Info("using published certificate authority",
				"secret", b.Profile.CASecret)
			return root, nil
		}
		log.Info("published certificate authority is not usable; generating a new one",
			"secret", b.Profile.CASecret)
	}

	root, err := pki.NewRootCertificateAuthority(b.Profile.CommonName, b.Profile.ValidityDays)
	if err != nil {
		return nil, err
	}

	fields := make(map[string][]byte)
	if fields[naming.FieldCACertificate], err = root.Certificate.MarshalText(); err != nil {
		return nil, err
	}
	if fields[naming.FieldCAKey], err = root.PrivateKey.MarshalText(); err != nil {
		return nil, err
	}

	if err := b.Publisher.Publish(ctx, b.Profile.CASecret, fields); err != nil {
		return nil, err
	}

	log.Info("published certificate authority",
		"secret", b.Profile.CASecret, "commonName", root.Certificate.CommonName())
	return root, nil
}

// EnsureServerCertificate makes sure the server leaf exists, chains to root,
// and covers the DNS names of the MongoDB service. The published secret gets
// the certificate, its key, the authority certificate, and the combined
// bundle mongod reads as certificateKeyFile.
func (b *Bootstrapper) EnsureServerCertificate(
	ctx context.Context, root *pki.RootCertificateAuthority,
) (*pki.LeafCertificate, error) {
	leaf := &config.Leaf{
		CommonName:  b.Profile.Server.CommonName,
		DNSNames:    b.Profile.Server.DNSNames,
		IPAddresses: b.Profile.Server.IPAddresses,
		Secret:      b.Profile.Server.Secret,
	}

	// The service names must be present for hostname verification, whatever
	// extra names the profile adds. Replica set members also connect to each
	// other by their stable pod names behind the headless service.
	dnsNames := naming.ServiceDNSNames(ctx, b.Profile.Service, b.Namespace)
	for ordinal := 0; ordinal < b.Profile.Replicas; ordinal++ {
		dnsNames = append(dnsNames, naming.ReplicaSetPodDNSNames(ctx,
			b.Profile.Service, b.Profile.HeadlessService, b.Namespace, ordinal)...)
	}
	dnsNames = append(dnsNames, leaf.DNSNames...)
	if leaf.CommonName == "" {
		leaf.CommonName = dnsNames[0] // FQDN
	}
	leaf.DNSNames = dnsNames

	return b.ensureLeaf(ctx, root, leaf)
}

// EnsureClientCertificate makes sure the client leaf exists and chains to
// root. Client certificates identify the subject to mongod for X.509
// authentication; they carry no service DNS names unless the profile adds
// them.
func (b *Bootstrapper) EnsureClientCertificate(
	ctx context.Context, root *pki.RootCertificateAuthority,
) (*pki.LeafCertificate, error) {
	leaf := &config.Leaf{
		CommonName:  b.Profile.Client.CommonName,
		DNSNames:    b.Profile.Client.DNSNames,
		IPAddresses: b.Profile.Client.IPAddresses,
		Secret:      b.Profile.Client.Secret,
	}

	return b.ensureLeaf(ctx, root, leaf)
}

func (b *Bootstrapper) ensureLeaf(
	ctx context.Context, root *pki.RootCertificateAuthority, intent *config.Leaf,
) (*pki.LeafCertificate, error) {
	log := logging.FromContext(ctx)

	existing := &pki.LeafCertificate{}

	certPEM, certErr := b.Publisher.Fetch(ctx, intent.Secret, naming.FieldCertificate)
	if err := ignoreNotFound(certErr); err != nil {
		return nil, err
	}
	keyPEM, keyErr := b.Publisher.Fetch(ctx, intent.Secret, naming.FieldPrivateKey)
	if err := ignoreNotFound(keyErr); err != nil {
		return nil, err
	}

	if certErr == nil && keyErr == nil {
		if certificate, err := pki.ParseCertificate(certPEM); err == nil {
			existing.Certificate = certificate
		}
		if key, err := pki.ParsePrivateKey(keyPEM); err == nil {
			existing.PrivateKey = key
		}
	}

	leaf, err := root.RegenerateLeafWhenNecessary(existing,
		intent.CommonName, intent.DNSNames,
		pki.IPAddresses(intent.IPAddresses), b.Profile.ValidityDays)
	if err != nil {
		return nil, err
	}

	combined, err := bundle.FromLeaf(leaf)
	if err != nil {
		return nil, err
	}

	fields := make(map[string][]byte)
	if fields[naming.FieldCertificate], err = leaf.Certificate.MarshalText(); err != nil {
		return nil, err
	}
	if fields[naming.FieldPrivateKey], err = leaf.PrivateKey.MarshalText(); err != nil {
		return nil, err
	}
	if fields[naming.FieldRootCertificate], err = root.Certificate.MarshalText(); err != nil {
		return nil, err
	}
	fields[naming.FieldBundle] = combined.Bytes()

	if err := b.Publisher.Publish(ctx, intent.Secret, fields); err != nil {
		return nil, err
	}

	if leaf == existing {
		log.V(1).Info("kept published certificate",
			"secret", intent.Secret, "commonName", leaf.Certificate.CommonName())
	} else {
		log.Info("published certificate",
			"secret", intent.Secret, "commonName", leaf.Certificate.CommonName(),
			"expires", leaf.Certificate.NotAfter())
	}
	return leaf, nil
}

// Run executes the full sequence: authority, server leaf, client leaf.
func (b *Bootstrapper) Run(ctx context.Context) error {
	root, err := b.EnsureRootCA(ctx)
	if err != nil {
		return err
	}
	if _, err := b.EnsureServerCertificate(ctx, root); err != nil {
		return err
	}
	_, err = b.EnsureClientCertificate(ctx, root)
	return err
}
