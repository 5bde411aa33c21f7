// Copyright 2025 - 2026 The MongoTLS Authors
//
// SPDX-License-Identifier: Apache-2.0

package kubeapi

import (
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/json"
)

// Merge7386 represents a JSON Merge Patch according to RFC 7386; the same as
// [types.MergePatchType].
type Merge7386 map[string]any

// NewMergePatch creates a new JSON Merge Patch according to RFC 7386; the
// same as [types.MergePatchType].
func NewMergePatch() *Merge7386 { return &Merge7386{} }

// Add modifies patch to indicate that the member at path should be added or
// replaced with value.
//
// > If the provided merge patch contains members that do not appear
// > within the target, those members are added.  If the target does
// > contain the member, the value is replaced.  Null values in the merge
// > patch are given special meaning to indicate the removal of existing
// > values in the target.
func (patch *Merge7386) Add(path ...string) func(value any) *Merge7386 {
	position := *patch

	for len(path) > 1 {
		p, ok := position[path[0]].(Merge7386)
		if !ok {
			p = Merge7386{}
			position[path[0]] = p
		}

		position = p
		path = path[1:]
	}

	if len(path) < 1 {
		return func(any) *Merge7386 { return patch }
	}

	f := func(value any) *Merge7386 {
		position[path[0]] = value
		return patch
	}

	position[path[0]] = f

	return f
}

// Bytes returns the JSON representation of patch.
func (patch *Merge7386) Bytes() ([]byte, error) { return json.Marshal(*patch) }

// Type returns [types.MergePatchType].
func (patch *Merge7386) Type() types.PatchType { return types.MergePatchType }
