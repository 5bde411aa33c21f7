// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// DecodeField extracts `.data.<field>` from a JSON-encoded Secret, such as
// the output of `kubectl get secret -o json`, and base64-decodes it. This is
// the programmatic equivalent of the `jsonpath ... | base64 -d` one-liners
// the runbook used.
func DecodeField(rawJSON []byte, field string) ([]byte, error) {
	var parsed struct {
		Data map[string]string `json:"data"`
	}

	if err := json.Unmarshal(rawJSON, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	value, ok := parsed.Data[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrEncoding, field, err)
	}
	return decoded, nil
}
