/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"context"
	"fmt"

	"chainguard.dev/mskreplicator/replicator"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/kafka"
	"github.com/chainguard-dev/clog"
)

// Update moves the replicator to the desired snapshot. At most one mutable
// attribute group may change per request; tags are reconciled first.
func (h *Handler) Update(ctx context.Context, req *Request, state *CallbackState) (*ProgressEvent, error) {
	token := req.ClientRequestToken

	if state == nil || state.Stage == "" {
		want := desired(req)
		if err := want.ValidateIdentity(); err != nil {
			return fail(ctx, token, err)
		}
		arn := want.ReplicatorArn

		out, err := h.describe(ctx, arn)
		if err != nil {
			return fail(ctx, token, err)
		}
		current := fromDescribe(out)

		changed := replicator.ChangedReplicationInfos(want, current)
		groups := replicator.ChangedGroups(want, current)
		if len(changed) > 1 || len(groups) > 1 {
			clog.WarnContextf(ctx, "[ClientRequestToken: %s] rejecting update of %s: %d replication infos and groups %v changed",
				token, arn, len(changed), groups)
			return fail(ctx, token, &HandlerError{Code: ErrorCodeInvalidRequest, Message: MultipleUpdatesUnsupported})
		}

		previousTags := current.Tags
		if req.PreviousResourceState != nil {
			previousTags = req.PreviousResourceState.Tags
		}
		if err := h.reconcileTags(ctx, arn,
			replicator.MergeTags(req.PreviousResourceTags, previousTags),
			replicator.MergeTags(req.DesiredResourceTags, want.Tags),
		); err != nil {
			return fail(ctx, token, err)
		}

		if len(changed) == 0 {
			clog.InfoContextf(ctx, "[ClientRequestToken: %s] no replication info changes for %s", token, arn)
			return success(want.Clone()), nil
		}

		version := want.CurrentVersion
		if version == "" {
			version = current.CurrentVersion
		}
		if _, err := call(ctx, h.tracer, "UpdateReplicationInfo", func(ctx context.Context) (*kafka.UpdateReplicationInfoOutput, error) {
			return h.client.UpdateReplicationInfoWithContext(ctx, toUpdateInput(arn, version, changed[0]))
		}); err != nil {
			return fail(ctx, token, err)
		}
		clog.InfoContextf(ctx, "[ClientRequestToken: %s] Stabilizing update operation for replicator %s.", token, arn)
		state = h.begin(StageUpdateStabilize, arn)
	}

	if state.Stage != StageUpdateStabilize {
		return nil, fmt.Errorf("update resumed at unexpected stage %q", state.Stage)
	}

	done, ev, err := h.poll(ctx, token, state, h.timings.Update, h.converged(replicator.StateRunning, replicator.StateUpdating))
	if !done {
		return ev, err
	}
	return h.read(ctx, token, state.ReplicatorArn)
}

// reconcileTags removes then adds tags so that previous becomes desired.
// Each half is skipped when it is empty.
func (h *Handler) reconcileTags(ctx context.Context, arn string, previous, desired map[string]string) error {
	toAdd, toRemove := replicator.DiffTags(previous, desired)

	if len(toRemove) > 0 {
		clog.InfoContextf(ctx, "Removing tags %v from %s", toRemove, arn)
		if _, err := call(ctx, h.tracer, "UntagResource", func(ctx context.Context) (*kafka.UntagResourceOutput, error) {
			return h.client.UntagResourceWithContext(ctx, &kafka.UntagResourceInput{
				ResourceArn: aws.String(arn),
				TagKeys:     aws.StringSlice(toRemove),
			})
		}); err != nil {
			return err
		}
	}

	if len(toAdd) > 0 {
		clog.InfoContextf(ctx, "Adding tags %v to %s", sortedKeys(toAdd), arn)
		if _, err := call(ctx, h.tracer, "TagResource", func(ctx context.Context) (*kafka.TagResourceOutput, error) {
			return h.client.TagResourceWithContext(ctx, &kafka.TagResourceInput{
				ResourceArn: aws.String(arn),
				Tags:        aws.StringMap(toAdd),
			})
		}); err != nil {
			return err
		}
	}
	return nil
}
