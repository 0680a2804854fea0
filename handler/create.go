/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/mskreplicator/replicator"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/kafka"
	"github.com/chainguard-dev/clog"
)

// Create creates the replicator described by the request, waits for it to
// reach RUNNING, and returns the freshly read snapshot.
func (h *Handler) Create(ctx context.Context, req *Request, state *CallbackState) (*ProgressEvent, error) {
	token := req.ClientRequestToken

	if state == nil || state.Stage == "" {
		model := desired(req)
		if err := model.ValidateForCreate(); err != nil {
			clog.WarnContextf(ctx, "[ClientRequestToken: %s] Property validation failure while creating replicator: %v", token, err)
			return fail(ctx, token, err)
		}

		tags := replicator.MergeTags(req.DesiredResourceTags, model.Tags)
		out, err := call(ctx, h.tracer, "CreateReplicator", func(ctx context.Context) (*kafka.CreateReplicatorOutput, error) {
			return h.client.CreateReplicatorWithContext(ctx, toCreateInput(model, tags))
		})
		if err != nil {
			var conflict *kafka.ConflictException
			if errors.As(err, &conflict) {
				err = alreadyExists(model.ReplicatorName, err)
			}
			return fail(ctx, token, err)
		}

		arn := model.ReplicatorArn
		if arn == "" {
			arn = aws.StringValue(out.ReplicatorArn)
		}
		clog.InfoContextf(ctx, "[ClientRequestToken: %s] Created replicator %s (%s), state %s",
			token, model.ReplicatorName, arn, aws.StringValue(out.ReplicatorState))
		state = h.begin(StageCreateStabilize, arn)
	}

	if state.Stage != StageCreateStabilize {
		return nil, fmt.Errorf("create resumed at unexpected stage %q", state.Stage)
	}

	done, ev, err := h.poll(ctx, token, state, h.timings.Create, h.converged(replicator.StateRunning, replicator.StateCreating))
	if !done {
		return ev, err
	}
	return h.read(ctx, token, state.ReplicatorArn)
}
