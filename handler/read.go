/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/kafka"
)

// Read returns the current snapshot of the replicator named by the request.
func (h *Handler) Read(ctx context.Context, req *Request) (*ProgressEvent, error) {
	model := desired(req)
	if err := model.ValidateIdentity(); err != nil {
		return fail(ctx, req.ClientRequestToken, err)
	}
	return h.read(ctx, req.ClientRequestToken, model.ReplicatorArn)
}

// List returns one page of replicators as identity-only models.
func (h *Handler) List(ctx context.Context, req *Request) (*ProgressEvent, error) {
	in := &kafka.ListReplicatorsInput{}
	if req.NextToken != "" {
		in.NextToken = aws.String(req.NextToken)
	}
	out, err := call(ctx, h.tracer, "ListReplicators", func(ctx context.Context) (*kafka.ListReplicatorsOutput, error) {
		return h.client.ListReplicatorsWithContext(ctx, in)
	})
	if err != nil {
		return fail(ctx, req.ClientRequestToken, err)
	}
	return &ProgressEvent{
		Status:    StatusSuccess,
		Models:    fromList(out),
		NextToken: aws.StringValue(out.NextToken),
	}, nil
}
