/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package replicatorreconciler drives replicator handler invocations from a
// workqueue.
//
// Each workqueue key names a stored Invocation: the request the host
// submitted, the CallbackState returned by the last call, and, once the
// operation is over, its outcome. Reconcile calls the handler exactly once per
// key delivery and translates the result into the workqueue vocabulary:
//
//   - IN_PROGRESS becomes workqueue.RequeueAfter with the handler's delay.
//   - FAILED becomes workqueue.NonRetriableError carrying the error code.
//   - An unclassified fault is also non-retriable; the handler already
//     decided it cannot be recovered by polling.
//   - A store fault is returned as is, so the dispatcher retries it.
//
// # Basic Usage
//
//	store := replicatorreconciler.NewMemoryStore()
//	r := replicatorreconciler.New(
//	    replicatorreconciler.WithHandler(handler.New(kafka.New(sess))),
//	    replicatorreconciler.WithStore(store),
//	)
//
//	if err := store.Put(ctx, key, &replicatorreconciler.Invocation{Request: req}); err != nil {
//	    return err
//	}
//	if err := queue.Queue(ctx, key, workqueue.Options{}); err != nil {
//	    return err
//	}
//	for {
//	    if err := dispatcher.Handle(ctx, queue, 1, 0, r.Process, 0); err != nil {
//	        return err
//	    }
//	    // sleep until queue.NextDue(), stop once the invocation is done
//	}
//
// The Reconciler keeps no state of its own; the Store must persist every
// Invocation faithfully between deliveries.
package replicatorreconciler
