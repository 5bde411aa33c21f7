// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package naming holds the names and labels shared between the issuance
// steps and anything that consumes their published secrets.
package naming

import corev1 "k8s.io/api/core/v1"

const (
	// CASecret is the secret holding the certificate authority pair. The
	// bitnami/mongodb chart reads these two fields when tls.enabled is set.
	CASecret = "mongodb-ca"

	// FieldCACertificate and FieldCAKey are the field names the chart expects.
	FieldCACertificate = "mongodb-ca-cert"
	FieldCAKey         = "mongodb-ca-key"

	// ServerSecret and ClientSecret hold one leaf credential each.
	ServerSecret = "mongodb-server-tls"
	ClientSecret = "mongodb-client-tls"

	// FieldCertificate and FieldPrivateKey follow the kubernetes.io/tls
	// convention so `kubectl create secret tls` output stays compatible.
	FieldCertificate = corev1.TLSCertKey       // "tls.crt"
	FieldPrivateKey  = corev1.TLSPrivateKeyKey // "tls.key"

	// FieldRootCertificate is the CA certificate distributed alongside each
	// leaf so consumers can build their trust pool from one secret.
	FieldRootCertificate = "ca.crt"

	// FieldBundle is the combined certificateKeyFile for mongod and mongosh.
	FieldBundle = "mongodb.pem"
)

const (
	// RoleServer and RoleClient identify the two leaves issued under the CA.
	RoleServer = "server"
	RoleClient = "client"
)

// LeafSecret returns the secret name for a role.
func LeafSecret(role string) string {
	if role == RoleClient {
		return ClientSecret
	}
	return ServerSecret
}
