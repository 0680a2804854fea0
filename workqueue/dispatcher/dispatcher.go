/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package dispatcher pulls due keys from a workqueue and runs a callback for
// each of them, mapping the callback's result onto the key's next state.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"chainguard.dev/mskreplicator/workqueue"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var outcomeCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mskreplicator_workqueue_outcomes_total",
		Help: "Total number of processed workqueue keys by outcome",
	},
	[]string{"outcome"},
)

// Callback processes one key.
type Callback func(ctx context.Context, key string, opts workqueue.Options) error

// Future waits for the work launched by HandleAsync.
type Future func() error

// Handle runs one dispatch round and waits for it to finish.
func Handle(ctx context.Context, wq workqueue.Interface, concurrency, batchSize int, f Callback, maxRetry int) error {
	return HandleAsync(ctx, wq, concurrency, batchSize, f, maxRetry)()
}

// HandleAsync requeues orphaned work, then starts up to concurrency minus the
// active count (and at most batchSize when positive) due keys, each with its
// own invocation of f.
//
// The callback's result decides what happens to the key:
//   - nil completes it.
//   - workqueue.RequeueAfter schedules it again after the delay.
//   - workqueue.NonRetriableError completes it.
//   - any other error requeues it, or dead-letters it once it has failed
//     maxRetry times (when maxRetry is positive).
func HandleAsync(ctx context.Context, wq workqueue.Interface, concurrency, batchSize int, f Callback, maxRetry int) Future {
	// Key bookkeeping must survive cancellation of ctx, or keys would be
	// left in progress on shutdown.
	cleanupCtx := context.WithoutCancel(ctx)

	wip, next, _, err := wq.Enumerate(ctx)
	if err != nil {
		return func() error {
			return fmt.Errorf("enumerate() = %w", err)
		}
	}

	active := 0
	for _, key := range wip {
		if !key.IsOrphaned() {
			active++
			continue
		}
		clog.InfoContextf(ctx, "Requeueing orphaned key: %s", key.Name())
		if err := key.Requeue(cleanupCtx); err != nil {
			return func() error {
				return fmt.Errorf("requeue(%s) = %w", key.Name(), err)
			}
		}
		outcomeCounter.WithLabelValues("orphaned").Inc()
	}

	openSlots := concurrency - active
	if batchSize > 0 {
		openSlots = min(openSlots, batchSize)
	}
	if openSlots <= 0 || len(next) == 0 {
		return func() error { return nil }
	}
	if len(next) > openSlots {
		next = next[:openSlots]
	}

	var eg errgroup.Group
	for _, key := range next {
		oip, err := key.Start(ctx)
		if err != nil {
			clog.WarnContextf(ctx, "Failed to start key %s: %v", key.Name(), err)
			continue
		}
		eg.Go(func() error {
			return process(cleanupCtx, oip, f, maxRetry)
		})
	}
	return eg.Wait
}

func process(cleanupCtx context.Context, oip workqueue.OwnedInProgressKey, f Callback, maxRetry int) error {
	ctx := oip.Context()
	name := oip.Name()

	err := f(ctx, name, workqueue.Options{Priority: oip.Priority()})
	if err == nil {
		outcomeCounter.WithLabelValues("complete").Inc()
		return oip.Complete(cleanupCtx)
	}

	if delay, ok := workqueue.GetRequeueDelay(err); ok {
		clog.InfoContextf(ctx, "Key %s requested requeue after %v", name, delay)
		outcomeCounter.WithLabelValues("requeue_after").Inc()
		return oip.RequeueWithOptions(cleanupCtx, workqueue.Options{
			Priority:  oip.Priority(),
			NotBefore: time.Now().Add(delay),
		})
	}

	if details := workqueue.GetNonRetriableDetails(err); details != nil {
		clog.WarnContextf(ctx, "Key %s failed with non-retriable error: %v (reason: %s)", name, err, details.Message)
		outcomeCounter.WithLabelValues("non_retriable").Inc()
		return oip.Complete(cleanupCtx)
	}

	if maxRetry > 0 && oip.GetAttempts() >= maxRetry {
		clog.ErrorContextf(ctx, "Key %s failed after %d attempts, dead-lettering: %v", name, oip.GetAttempts(), err)
		outcomeCounter.WithLabelValues("deadletter").Inc()
		return oip.Deadletter(cleanupCtx)
	}

	clog.WarnContextf(ctx, "Key %s failed (attempt %d), requeueing: %v", name, oip.GetAttempts()+1, err)
	outcomeCounter.WithLabelValues("requeue").Inc()
	return oip.Requeue(cleanupCtx)
}
