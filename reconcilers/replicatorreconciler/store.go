/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package replicatorreconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"chainguard.dev/mskreplicator/handler"
)

// ErrNotFound is returned by a Store that holds nothing under a key.
var ErrNotFound = errors.New("invocation not found")

// Invocation is everything remembered about one submitted request.
type Invocation struct {
	Request handler.Request `json:"request"`

	// State is the CallbackState to pass to the next call, nil before the
	// first one.
	State *handler.CallbackState `json:"state,omitempty"`

	// Result is the last event the handler returned.
	Result *handler.ProgressEvent `json:"result,omitempty"`

	// Error is set when the handler returned an unclassified fault.
	Error string `json:"error,omitempty"`
}

// Done reports whether the operation has reached an outcome.
func (i *Invocation) Done() bool {
	return i.Error != "" || (i.Result != nil && i.Result.Terminal())
}

// Store persists invocations between deliveries of their key.
type Store interface {
	Get(ctx context.Context, key string) (*Invocation, error)
	Put(ctx context.Context, key string, inv *Invocation) error
}

// MemoryStore is a Store holding serialized invocations in memory. Values
// pass through JSON on every Put and Get, so nothing survives between calls
// that would not survive a real persistence layer.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (*Invocation, error) {
	s.mu.RLock()
	raw, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	var inv Invocation
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("decoding invocation %s: %w", key, err)
	}
	return &inv, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key string, inv *Invocation) error {
	raw, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encoding invocation %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = raw
	return nil
}
