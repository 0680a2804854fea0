/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"context"
	"time"

	"chainguard.dev/mskreplicator/replicator"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/chainguard-dev/clog"
)

// Timing bounds one stabilization phase.
type Timing struct {
	// Timeout is the total time allowed since the phase started.
	Timeout time.Duration
	// Delay is the interval the host waits before re-invoking.
	Delay time.Duration
}

// Timings holds the stabilization bounds of every operation.
type Timings struct {
	Create    Timing
	Update    Timing
	Delete    Timing
	PreDelete Timing
}

// DefaultTimings are the bounds used unless overridden with WithTimings. The
// pre-delete check shares the create bounds since the replicator may still be
// creating.
var DefaultTimings = Timings{
	Create:    Timing{Timeout: 120 * time.Minute, Delay: 30 * time.Second},
	Update:    Timing{Timeout: 720 * time.Minute, Delay: time.Minute},
	Delete:    Timing{Timeout: 75 * time.Minute, Delay: 30 * time.Second},
	PreDelete: Timing{Timeout: 120 * time.Minute, Delay: 30 * time.Second},
}

// readiness performs one poll of the replicator and reports whether the
// phase is complete. A returned error ends the operation.
type readiness func(ctx context.Context, arn string) (bool, error)

// begin starts a stabilization phase at the current time.
func (h *Handler) begin(stage Stage, arn string) *CallbackState {
	return &CallbackState{Stage: stage, StartedAt: h.now(), ReplicatorArn: arn}
}

// poll performs at most one readiness check for the phase in state. When the
// phase is not complete the returned event asks the host to call back after
// the phase delay with the same state.
func (h *Handler) poll(ctx context.Context, token string, state *CallbackState, timing Timing, ready readiness) (bool, *ProgressEvent, error) {
	if elapsed := h.now().Sub(state.StartedAt); elapsed >= timing.Timeout {
		clog.WarnContextf(ctx, "[ClientRequestToken: %s] %s of %s exceeded %v after %v", token, state.Stage, state.ReplicatorArn, timing.Timeout, elapsed)
		ev, err := fail(ctx, token, notStabilized(state.ReplicatorArn))
		return false, ev, err
	}
	done, err := ready(ctx, state.ReplicatorArn)
	if err != nil {
		ev, err := fail(ctx, token, err)
		return false, ev, err
	}
	if !done {
		next := *state
		return false, inProgress(&next, timing.Delay), nil
	}
	return true, nil, nil
}

// converged returns the readiness check for create and update: success once
// the replicator reports want, keep polling while it reports pending, and
// fail on any other state.
func (h *Handler) converged(want, pending replicator.State) readiness {
	return func(ctx context.Context, arn string) (bool, error) {
		out, err := h.describe(ctx, arn)
		if err != nil {
			return false, err
		}
		switch got := replicator.State(aws.StringValue(out.ReplicatorState)); got {
		case want:
			clog.InfoContextf(ctx, "Replicator %s is stabilized, current state is %s", arn, got)
			return true, nil
		case pending:
			clog.InfoContextf(ctx, "Replicator %s is stabilizing, current state is %s", arn, got)
			return false, nil
		default:
			clog.WarnContextf(ctx, "Replicator %s reached unexpected state %s", arn, got)
			return false, notStabilized(arn)
		}
	}
}

// deletable reports whether the replicator has settled into a state it can
// be deleted from. A replicator that is already gone is deletable.
func (h *Handler) deletable(ctx context.Context, arn string) (bool, error) {
	out, err := h.describe(ctx, arn)
	switch {
	case isGone(err):
		clog.InfoContextf(ctx, "Replicator with arn: %s is already deleted.", arn)
		return true, nil
	case isBadRequest(err):
		return false, invalidRequest(err)
	case err != nil:
		return false, err
	}
	switch got := replicator.State(aws.StringValue(out.ReplicatorState)); {
	case got == replicator.StateRunning, got == replicator.StateFailed:
		return true, nil
	case got.Transitioning():
		clog.InfoContextf(ctx, "Replicator %s is %s, waiting before delete", arn, got)
		return false, nil
	default:
		clog.WarnContextf(ctx, "Replicator %s is %s, waiting for it to settle before delete", arn, got)
		return false, nil
	}
}

// deleted reports whether the replicator is gone.
func (h *Handler) deleted(ctx context.Context, arn string) (bool, error) {
	out, err := h.describe(ctx, arn)
	switch {
	case isGone(err):
		clog.InfoContextf(ctx, "Replicator %s is deleted", arn)
		return true, nil
	case isBadRequest(err):
		return false, invalidRequest(err)
	case err != nil:
		return false, err
	}
	switch got := replicator.State(aws.StringValue(out.ReplicatorState)); got {
	case replicator.StateDeleting:
		clog.InfoContextf(ctx, "Replicator %s is deleting, current state is %s", arn, got)
		return false, nil
	default:
		clog.WarnContextf(ctx, "Replicator %s reached unexpected state %s", arn, got)
		return false, notStabilized(arn)
	}
}
