// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mongotls/bootstrap/internal/kubeapi"
	"github.com/mongotls/bootstrap/internal/secrets"
)

var fetchOutput string

var fetchCmd = &cobra.Command{
	Use:   "fetch SECRET FIELD",
	Short: "Fetch one field of a published secret.",
	Long: `Fetch reads a field of a secret and writes the decoded bytes to
standard output, replacing the jsonpath-and-base64 one-liners used when
extracting credentials by hand.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, clientset, err := kubeapi.NewKubeClient(kubeconfig)
		if err != nil {
			return err
		}

		publisher := secrets.NewPublisher(clientset, currentNamespace())
		value, err := publisher.Fetch(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		if fetchOutput != "" {
			return os.WriteFile(fetchOutput, value, 0o600)
		}
		_, err = cmd.OutOrStdout().Write(value)
		return err
	},
}

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all published credentials to a local directory.",
	Long: `Export runs the full issuance sequence, then writes ca.crt, ca.key,
and a crt/key/pem triple for each role into the directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := newBootstrapper()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := b.Run(ctx); err != nil {
			return err
		}
		return b.Export(ctx, exportDir)
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "",
		"Write the field value to this file instead of standard output.")
	exportCmd.Flags().StringVar(&exportDir, "dir", ".",
		"Directory to write credential files into.")

	rootCmd.AddCommand(fetchCmd, exportCmd)
}
