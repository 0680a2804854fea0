/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package replicator

import (
	"maps"
	"slices"
)

// DiffTags computes the delta that moves a resource from previous to desired.
// toAdd holds every desired entry whose key is missing from previous or whose
// value differs; toRemove holds every previous key missing from desired,
// sorted. Either result may be empty.
func DiffTags(previous, desired map[string]string) (toAdd map[string]string, toRemove []string) {
	toAdd = make(map[string]string)
	for k, v := range desired {
		if old, ok := previous[k]; !ok || old != v {
			toAdd[k] = v
		}
	}
	for k := range previous {
		if _, ok := desired[k]; !ok {
			toRemove = append(toRemove, k)
		}
	}
	slices.Sort(toRemove)
	return toAdd, toRemove
}

// MergeTags layers the given mappings left to right; later mappings win on
// key clashes. The result is never nil.
func MergeTags(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}
