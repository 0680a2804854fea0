/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package replicatorreconciler

import (
	"context"

	"chainguard.dev/mskreplicator/handler"
)

// Invoker runs one handler invocation. *handler.Handler implements it.
type Invoker interface {
	Invoke(ctx context.Context, req *handler.Request, state *handler.CallbackState) (*handler.ProgressEvent, error)
}

var _ Invoker = (*handler.Handler)(nil)

// Option configures the Reconciler.
type Option func(*Reconciler)

// WithHandler installs the handler invoked for every workqueue key.
func WithHandler(h Invoker) Option {
	return func(r *Reconciler) {
		r.handler = h
	}
}

// WithStore replaces the default in-memory invocation store.
func WithStore(s Store) Option {
	return func(r *Reconciler) {
		r.store = s
	}
}
