/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chainguard.dev/mskreplicator/handler"
	"chainguard.dev/mskreplicator/reconcilers/replicatorreconciler"
	"chainguard.dev/mskreplicator/workqueue"
	"chainguard.dev/mskreplicator/workqueue/dispatcher"
	"chainguard.dev/mskreplicator/workqueue/inmem"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

// failedError reports an operation that ended FAILED. The outcome has
// already been printed.
type failedError struct {
	code handler.ErrorCode
}

func (e *failedError) Error() string {
	return fmt.Sprintf("operation failed: %s", e.code)
}

func run(cmd *cobra.Command, cfg *config, factory handlerFactory, req *handler.Request, output string) error {
	ctx := cmd.Context()

	h, err := factory(cfg)
	if err != nil {
		return err
	}

	inv, err := drive(ctx, h, replicatorreconciler.NewMemoryStore(), inmem.New(), req, cfg.Concurrency, cfg.MaxRetry)
	if err != nil {
		return err
	}
	if inv.Error != "" {
		return errors.New(inv.Error)
	}
	if err := render(cmd.OutOrStdout(), output, inv.Result); err != nil {
		return err
	}
	if inv.Result.Status == handler.StatusFailed {
		return &failedError{code: inv.Result.ErrorCode}
	}
	return nil
}

// drive submits req and runs the dispatcher until its invocation is done,
// sleeping between rounds until the queue's next key is due.
func drive(ctx context.Context, h replicatorreconciler.Invoker, store replicatorreconciler.Store, queue *inmem.Queue, req *handler.Request, concurrency, maxRetry int) (*replicatorreconciler.Invocation, error) {
	r := replicatorreconciler.New(
		replicatorreconciler.WithHandler(h),
		replicatorreconciler.WithStore(store),
	)

	key := req.ClientRequestToken
	if err := store.Put(ctx, key, &replicatorreconciler.Invocation{Request: *req}); err != nil {
		return nil, err
	}
	if err := queue.Queue(ctx, key, workqueue.Options{}); err != nil {
		return nil, err
	}
	clog.InfoContextf(ctx, "Submitted %s request %s", req.Action, key)

	for {
		if err := dispatcher.Handle(ctx, queue, max(concurrency, 1), 0, r.Process, maxRetry); err != nil {
			return nil, err
		}

		inv, err := store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if inv.Done() {
			return inv, nil
		}

		if queue.Idle() {
			return nil, fmt.Errorf("request %s was dead-lettered after %d attempts", key, maxRetry)
		}
		due, _ := queue.NextDue()
		if wait := time.Until(due); wait > 0 {
			clog.DebugContextf(ctx, "Waiting %v before polling %s again", wait.Round(time.Second), key)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
}
