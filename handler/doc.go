/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package handler drives MSK replicators through create, read, update,
// delete and list against the MSK API.
//
// Mutating operations are re-entrant. Each call to Invoke performs the
// operation's remote action at most once and polls the replicator at most
// once per phase. While the replicator is still transitioning the returned
// ProgressEvent has status IN_PROGRESS, a CallbackDelay, and a CallbackState
// that the host passes back on the next call:
//
//	h := handler.New(kafka.New(sess))
//	var state *handler.CallbackState
//	for {
//	    ev, err := h.Invoke(ctx, req, state)
//	    if err != nil {
//	        return err // unclassified fault
//	    }
//	    if ev.Terminal() {
//	        return report(ev)
//	    }
//	    state = ev.CallbackState
//	    time.Sleep(ev.CallbackDelay)
//	}
//
// Remote faults are mapped onto an ErrorCode and returned as a FAILED event
// whose message carries the request's correlation token. Faults that cannot
// be mapped are returned as errors.
package handler
