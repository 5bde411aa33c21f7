// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package kubeapi holds the small amount of Kubernetes client plumbing the
// issuance steps need: building a clientset and expressing field-level
// patches.
package kubeapi

import (
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// loadClientConfig reads the kubeconfig named by the environment or found in
// the home directory, falling back to an in-cluster configuration.
func loadClientConfig(kubeconfig string) (*rest.Config, error) {
	// The default loading rules try to read from the files specified in the
	// environment or from the home directory.
	loader := clientcmd.NewDefaultClientConfigLoadingRules()
	loader.ExplicitPath = kubeconfig

	// The deferred loader tries an in-cluster config if the default loading
	// rules produce no results.
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loader, &clientcmd.ConfigOverrides{},
	).ClientConfig()
}

// NewKubeClient returns a Clientset for interacting with Kubernetes
// resources, along with the REST config used to create the client. When
// kubeconfig is empty, the usual loading rules apply.
func NewKubeClient(kubeconfig string) (*rest.Config, *kubernetes.Clientset, error) {
	config, err := loadClientConfig(kubeconfig)
	if err != nil {
		return nil, nil, err
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, err
	}
	return config, clientset, nil
}
