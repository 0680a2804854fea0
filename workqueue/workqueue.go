/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package workqueue defines the key-based work queue the reconcilers are
// driven by, and the error vocabulary callbacks use to steer what happens to
// a key after it is processed.
package workqueue

import (
	"context"
	"time"
)

// Options controls how a key is queued.
type Options struct {
	// Priority orders due keys; higher values are started first.
	Priority int64

	// NotBefore delays the key until the given time. The zero value means
	// the key is due immediately.
	NotBefore time.Time
}

// Key is the common surface of every key state.
type Key interface {
	Name() string
	Priority() int64
}

// QueuedKey is a key waiting to be processed.
type QueuedKey interface {
	Key

	// Start claims the key for processing.
	Start(context.Context) (OwnedInProgressKey, error)
}

// ObservedInProgressKey is a key some worker is processing.
type ObservedInProgressKey interface {
	Key

	// IsOrphaned reports whether the worker processing the key went away.
	IsOrphaned() bool

	// Requeue returns the key to the queue.
	Requeue(context.Context) error
}

// OwnedInProgressKey is a key this worker claimed with Start.
type OwnedInProgressKey interface {
	Key

	// Context is cancelled when ownership of the key is lost.
	Context() context.Context

	// GetAttempts returns how many times processing of the key has failed.
	GetAttempts() int

	Complete(context.Context) error
	Deadletter(context.Context) error
	Requeue(context.Context) error
	RequeueWithOptions(context.Context, Options) error
}

// DeadLetteredKey is a key that exhausted its retries.
type DeadLetteredKey interface {
	Key

	GetAttempts() int
	FailedAt() time.Time
}

// Interface is a work queue.
type Interface interface {
	// Queue adds key to the queue. Queueing a key that is already queued
	// keeps the higher priority and the earlier due time.
	Queue(ctx context.Context, key string, opts Options) error

	// Enumerate returns the in-progress keys, the queued keys that are due
	// ordered by priority, and the dead-lettered keys.
	Enumerate(ctx context.Context) ([]ObservedInProgressKey, []QueuedKey, []DeadLetteredKey, error)
}
