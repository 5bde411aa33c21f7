// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package secrets publishes generated credentials to the cluster secret
// store and retrieves them back out. Publishing is field-level: an existing
// secret is patched rather than replaced, so fields written by other tools
// (for example `kubectl create secret tls`) survive.
package secrets

import (
	"context"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	corev1client "k8s.io/client-go/kubernetes/typed/core/v1"

	"github.com/mongotls/bootstrap/internal/kubeapi"
	"github.com/mongotls/bootstrap/internal/logging"
)

// fetchAttempts bounds the retry of reads when the store is transiently
// unavailable. Reads are idempotent; writes are never blindly retried.
const fetchAttempts = 3

// ManagedByLabel marks secrets created by this tool. Patched secrets keep
// whatever labels they already have.
const ManagedByLabel = "app.kubernetes.io/managed-by"

// ManagedByValue is the value of ManagedByLabel.
const ManagedByValue = "mongotls"

// Publisher writes and reads secret fields in one namespace. Patch
// operations on the same secret name are serialized to avoid lost updates.
type Publisher struct {
	secrets   corev1client.SecretInterface
	namespace string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPublisher returns a Publisher scoped to namespace.
func NewPublisher(client kubernetes.Interface, namespace string) *Publisher {
	return &Publisher{
		secrets:   client.CoreV1().Secrets(namespace),
		namespace: namespace,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lock serializes operations on one secret name and returns the unlock.
func (p *Publisher) lock(name string) func() {
	p.mu.Lock()
	m, ok := p.locks[name]
	if !ok {
		m = &sync.Mutex{}
		p.locks[name] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Publish writes fields into the secret called name, creating it when it
// does not exist and patching only the given fields when it does. The
// current state is always read first; a failed write is surfaced rather
// than retried.
func (p *Publisher) Publish(ctx context.Context, name string, fields map[string][]byte) error {
	if len(fields) == 0 {
		return nil
	}
	defer p.lock(name)()

	log := logging.FromContext(ctx)

	_, err := p.secrets.Get(ctx, name, metav1.GetOptions{})
	if err != nil && !kubeapi.IsNotFound(err) {
		return errors.WithStack(err)
	}

	if kubeapi.IsNotFound(err) {
		intent := &corev1.Secret{}
		intent.Namespace, intent.Name = p.namespace, name
		intent.Labels = map[string]string{ManagedByLabel: ManagedByValue}
		intent.Type = corev1.SecretTypeOpaque
		intent.Data = fields

		_, err = p.secrets.Create(ctx, intent, metav1.CreateOptions{})
		if err == nil {
			log.V(1).Info("created secret", "secret", name)
			return nil
		}
		// Another writer created it between the read and this write.
		// Fall through and patch the fields in.
		if !kubeapi.IsAlreadyExists(err) {
			return errors.WithStack(err)
		}
	}

	patch := kubeapi.NewMergePatch()
	for field, value := range fields {
		patch.Add("data", field)(value)
	}

	data, err := patch.Bytes()
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = p.secrets.Patch(ctx, name, patch.Type(), data, metav1.PatchOptions{})
	if err == nil {
		log.V(1).Info("patched secret", "secret", name)
	}
	return errors.WithStack(err)
}

// Fetch reads one field of the secret called name. Transient store errors
// are retried; a missing secret or field is not.
func (p *Publisher) Fetch(ctx context.Context, name, field string) ([]byte, error) {
	var secret *corev1.Secret

	err := retry.Do(
		func() error {
			found, err := p.secrets.Get(ctx, name, metav1.GetOptions{})
			if kubeapi.IsNotFound(err) {
				return retry.Unrecoverable(
					errors.Wrapf(ErrSecretNotFound, "%q in %q", name, p.namespace))
			}
			if err != nil {
				return err
			}

			secret = found
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(fetchAttempts),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	value, ok := secret.Data[field]
	if !ok {
		return nil, errors.Wrapf(ErrFieldNotFound, "%q of %q", field, name)
	}
	return value, nil
}
