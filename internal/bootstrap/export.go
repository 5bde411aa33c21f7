// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mongotls/bootstrap/internal/logging"
	"github.com/mongotls/bootstrap/internal/naming"
)

// exportFile names one artifact on disk and where its bytes come from.
type exportFile struct {
	name   string
	secret string
	field  string
	mode   os.FileMode
}

// Export fetches the published credentials and writes them to dir using the
// layout operators expect from the manual openssl procedure: ca.crt, ca.key,
// and a crt/key/pem triple per role. Private material is written 0600.
func (b *Bootstrapper) Export(ctx context.Context, dir string) error {
	log := logging.FromContext(ctx)

	files := []exportFile{
		{"ca.crt", b.Profile.CASecret, naming.FieldCACertificate, 0o644},
		{"ca.key", b.Profile.CASecret, naming.FieldCAKey, 0o600},
	}
	for role, secret := range map[string]string{
		naming.RoleServer: b.Profile.Server.Secret,
		naming.RoleClient: b.Profile.Client.Secret,
	} {
		files = append(files,
			exportFile{role + ".crt", secret, naming.FieldCertificate, 0o644},
			exportFile{role + ".key", secret, naming.FieldPrivateKey, 0o600},
			exportFile{role + ".pem", secret, naming.FieldBundle, 0o600},
		)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, f := range files {
		value, err := b.Publisher.Fetch(ctx, f.secret, f.field)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), value, f.mode); err != nil {
			return err
		}
	}

	log.Info("exported credentials", "directory", dir, "files", len(files))
	return nil
}
