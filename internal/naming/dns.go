// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package naming

import (
	"context"
	"net"
	"strconv"
	"strings"
)

// ServiceDNSNames returns the possible DNS names for the MongoDB service.
// The first name is the fully qualified domain name (FQDN).
func ServiceDNSNames(ctx context.Context, service, namespace string) []string {
	domain := KubernetesClusterDomain(ctx)

	return []string{
		service + "." + namespace + ".svc." + domain,
		service + "." + namespace + ".svc",
		service + "." + namespace,
		service,
	}
}

// ReplicaSetPodDNSNames returns the possible DNS names for one member of a
// MongoDB replica set behind a headless service. The first name is the FQDN.
func ReplicaSetPodDNSNames(ctx context.Context, statefulSet, service, namespace string, ordinal int) []string {
	var (
		domain = KubernetesClusterDomain(ctx)
		name   = statefulSet + "-" + strconv.Itoa(ordinal) + "." + service
	)

	// Replica set members get stable DNS names in the form
	// "{pod}.{service}.{namespace}.svc.{cluster-domain}".
	// - https://docs.k8s.io/concepts/services-networking/dns-pod-service/#pods
	return []string{
		name + "." + namespace + ".svc." + domain,
		name + "." + namespace + ".svc",
		name + "." + namespace,
		name,
	}
}

// KubernetesClusterDomain looks up the Kubernetes cluster domain name.
func KubernetesClusterDomain(ctx context.Context) string {
	ctx, span := tracer.Start(ctx, "kubernetes-domain-lookup")
	defer span.End()

	// Lookup an existing Service to determine its fully qualified domain name.
	// This is inexpensive because the "net" package uses OS-level DNS caching.
	// - https://golang.org/issue/24796
	api := "kubernetes.default.svc"
	cname, err := net.DefaultResolver.LookupCNAME(ctx, api)

	if err == nil {
		return strings.TrimSuffix(strings.TrimPrefix(cname, api+"."), ".")
	}

	span.RecordError(err)
	// The kubeadm default is "cluster.local" and is adequate when not running
	// in an actual Kubernetes cluster.
	return "cluster.local"
}
