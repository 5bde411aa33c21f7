// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mongotls/bootstrap/internal/naming"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Run the full issuance sequence.",
	Long: `Ensure the certificate authority, the server certificate, and the
client certificate all exist, chain correctly, and are published.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := newBootstrapper()
		if err != nil {
			return err
		}
		return b.Run(cmd.Context())
	},
}

var issueRole string

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue one leaf certificate under the published authority.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if issueRole != naming.RoleServer && issueRole != naming.RoleClient {
			return fmt.Errorf("unknown role %q; expected %q or %q",
				issueRole, naming.RoleServer, naming.RoleClient)
		}

		b, err := newBootstrapper()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		root, err := b.EnsureRootCA(ctx)
		if err != nil {
			return err
		}

		if issueRole == naming.RoleClient {
			_, err = b.EnsureClientCertificate(ctx, root)
		} else {
			_, err = b.EnsureServerCertificate(ctx, root)
		}
		return err
	},
}

func init() {
	issueCmd.Flags().StringVar(&issueRole, "role", naming.RoleServer,
		`Which leaf to issue: "server" or "client".`)

	rootCmd.AddCommand(bootstrapCmd, issueCmd)
}
