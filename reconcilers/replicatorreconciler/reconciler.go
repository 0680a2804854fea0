/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package replicatorreconciler

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/mskreplicator/handler"
	"chainguard.dev/mskreplicator/workqueue"
	"github.com/chainguard-dev/clog"
)

// Reconciler advances stored handler invocations one call at a time.
type Reconciler struct {
	handler Invoker
	store   Store
}

// New constructs a Reconciler with the provided options.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		store: NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile makes one handler call for the invocation stored under key and
// records its outcome. It has the signature of a dispatcher.Callback.
func (r *Reconciler) Reconcile(ctx context.Context, key string) error {
	if r.handler == nil {
		return errors.New("no handler configured")
	}

	inv, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return workqueue.NonRetriableError(err, "unknown invocation")
	} else if err != nil {
		return fmt.Errorf("loading invocation %s: %w", key, err)
	}
	if inv.Done() {
		clog.InfoContextf(ctx, "Invocation %s already finished, nothing to do", key)
		return nil
	}

	ev, err := r.handler.Invoke(ctx, &inv.Request, inv.State)
	if err != nil {
		inv.Error = err.Error()
		inv.State = nil
		if perr := r.store.Put(ctx, key, inv); perr != nil {
			return fmt.Errorf("saving invocation %s: %w", key, perr)
		}
		return workqueue.NonRetriableError(err, "unclassified fault")
	}

	inv.Result = ev
	inv.State = ev.CallbackState
	if err := r.store.Put(ctx, key, inv); err != nil {
		return fmt.Errorf("saving invocation %s: %w", key, err)
	}

	switch ev.Status {
	case handler.StatusInProgress:
		clog.InfoContextf(ctx, "Invocation %s in progress (stage %s), checking again in %v", key, stageOf(ev), ev.CallbackDelay)
		return workqueue.RequeueAfter(ev.CallbackDelay)
	case handler.StatusFailed:
		return workqueue.NonRetriableError(fmt.Errorf("%s: %s", ev.ErrorCode, ev.Message), string(ev.ErrorCode))
	default:
		clog.InfoContextf(ctx, "Invocation %s succeeded", key)
		return nil
	}
}

// Process adapts Reconcile to the dispatcher callback signature.
func (r *Reconciler) Process(ctx context.Context, key string, _ workqueue.Options) error {
	return r.Reconcile(ctx, key)
}

func stageOf(ev *handler.ProgressEvent) handler.Stage {
	if ev.CallbackState == nil {
		return ""
	}
	return ev.CallbackState.Stage
}
