/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/kafka"
	"github.com/chainguard-dev/clog"
)

// Delete waits for the replicator to settle, deletes it, and waits for it to
// disappear. Success carries no model.
func (h *Handler) Delete(ctx context.Context, req *Request, state *CallbackState) (*ProgressEvent, error) {
	token := req.ClientRequestToken

	if state == nil || state.Stage == "" {
		model := desired(req)
		if err := model.ValidateIdentity(); err != nil {
			return fail(ctx, token, err)
		}
		state = h.begin(StagePreDelete, model.ReplicatorArn)
	}

	switch state.Stage {
	case StagePreDelete:
		done, ev, err := h.poll(ctx, token, state, h.timings.PreDelete, h.deletable)
		if !done {
			return ev, err
		}
		if err := h.deleteReplicator(ctx, token, state.ReplicatorArn); err != nil {
			return fail(ctx, token, err)
		}
		state = h.begin(StageDeleteStabilize, state.ReplicatorArn)
	case StageDeleteStabilize:
	default:
		return nil, fmt.Errorf("delete resumed at unexpected stage %q", state.Stage)
	}

	done, ev, err := h.poll(ctx, token, state, h.timings.Delete, h.deleted)
	if !done {
		return ev, err
	}
	return &ProgressEvent{Status: StatusSuccess}, nil
}

// deleteReplicator issues the delete. A replicator that does not exist, or
// whose ARN the service rejects as invalid, cannot be deleted and surfaces
// as NotFound.
func (h *Handler) deleteReplicator(ctx context.Context, token, arn string) error {
	_, err := call(ctx, h.tracer, "DeleteReplicator", func(ctx context.Context) (*kafka.DeleteReplicatorOutput, error) {
		return h.client.DeleteReplicatorWithContext(ctx, &kafka.DeleteReplicatorInput{ReplicatorArn: aws.String(arn)})
	})
	switch {
	case err == nil:
		clog.InfoContextf(ctx, "[ClientRequestToken: %s] Deleting replicator %s", token, arn)
		return nil
	case isGone(err):
		clog.WarnContextf(ctx, "MSK API request for replicator deletion failed with message: %s, because the replicator %s does not exist", messageOf(err), arn)
		return notFound(arn, err)
	case isBadRequest(err):
		clog.WarnContextf(ctx, "MSK API request for replicator deletion of %s failed: %s", arn, messageOf(err))
		return invalidRequest(err)
	default:
		return err
	}
}
