// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the mongotls command line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mongotls/bootstrap/internal/bootstrap"
	"github.com/mongotls/bootstrap/internal/config"
	"github.com/mongotls/bootstrap/internal/kubeapi"
	"github.com/mongotls/bootstrap/internal/logging"
	"github.com/mongotls/bootstrap/internal/secrets"
)

// versionString is set by the build.
var versionString = "development"

var (
	namespace  string
	kubeconfig string
	profile    string
	debugFlag  bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mongotls",
	Short: "Bootstrap TLS credentials for a MongoDB deployment.",
	Long: `mongotls generates a certificate authority and the server and client
certificates a MongoDB deployment needs, and publishes them to cluster
secrets. Every command is idempotent: re-running after a failure picks up
where things left off.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		initLogging()
	},
}

// Execute adds all child commands to the root command and runs it. This is
// called by main.main() and only needs to happen once.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "",
		"The namespace holding the MongoDB deployment and its secrets.")
	rootCmd.PersistentFlags().StringVar(&kubeconfig, "kubeconfig", "",
		"Absolute path to a kubeconfig file. Defaults to the usual loading rules.")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "",
		"Path to a YAML issuance profile. Defaults cover the bitnami/mongodb chart.")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"Enable additional output for debugging.")
}

func initLogging() {
	// Treat logr.Logger.V(1) as logrus.DebugLevel.
	var verbosity int
	if debugFlag || strings.EqualFold(os.Getenv("MONGOTLS_DEBUG"), "true") {
		verbosity = 1
	}
	logging.SetLogSink(logging.Logrus(os.Stdout, versionString, 1, verbosity))
}

// currentNamespace resolves the namespace flag, the environment, then a
// plain default, in that order.
func currentNamespace() string {
	if namespace != "" {
		return namespace
	}
	if env := os.Getenv("MONGOTLS_NAMESPACE"); env != "" {
		return env
	}
	return "default"
}

// currentProfile loads the profile file when one was given.
func currentProfile() (*config.Profile, error) {
	if profile == "" {
		return config.Default(), nil
	}
	return config.Load(profile)
}

// newBootstrapper builds the orchestrator from the shared flags.
func newBootstrapper() (*bootstrap.Bootstrapper, error) {
	loaded, err := currentProfile()
	if err != nil {
		return nil, err
	}

	_, clientset, err := kubeapi.NewKubeClient(kubeconfig)
	if err != nil {
		return nil, err
	}

	ns := currentNamespace()
	return bootstrap.New(secrets.NewPublisher(clientset, ns), loaded, ns), nil
}
