/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"context"
	"fmt"
	"time"

	"chainguard.dev/mskreplicator/replicator"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/kafka"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "chainguard.dev/mskreplicator/handler"

// Handler reconciles replicators against the MSK API.
type Handler struct {
	client  Client
	now     func() time.Time
	timings Timings
	tracer  oteltrace.Tracer
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the time source used for stabilization timeouts.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithTimings overrides the stabilization bounds.
func WithTimings(t Timings) Option {
	return func(h *Handler) {
		h.timings = t
	}
}

// WithTracerProvider overrides the global provider the Handler's spans are
// recorded with.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(h *Handler) {
		h.tracer = tp.Tracer(tracerName)
	}
}

// New constructs a Handler calling client.
func New(client Client, opts ...Option) *Handler {
	h := &Handler{
		client:  client,
		now:     time.Now,
		timings: DefaultTimings,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Invoke dispatches req to the operation named by req.Action. state is the
// CallbackState returned by the previous invocation of the same operation,
// or nil on the first call.
//
// A non-nil error means the fault could not be classified and the operation
// must not be retried.
func (h *Handler) Invoke(ctx context.Context, req *Request, state *CallbackState) (*ProgressEvent, error) {
	arn := ""
	if req.DesiredResourceState != nil {
		arn = req.DesiredResourceState.ReplicatorArn
	}
	if arn == "" && state != nil {
		arn = state.ReplicatorArn
	}

	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With(
		"clientRequestToken", req.ClientRequestToken,
		"action", string(req.Action),
		"replicatorArn", arn,
	))
	ctx, span := h.tracer.Start(ctx, "replicator."+string(req.Action), oteltrace.WithAttributes(
		attribute.String("client_request_token", req.ClientRequestToken),
		attribute.String("replicator_arn", arn),
	))
	defer span.End()

	var (
		ev  *ProgressEvent
		err error
	)
	switch req.Action {
	case ActionCreate:
		ev, err = h.Create(ctx, req, state)
	case ActionRead:
		ev, err = h.Read(ctx, req)
	case ActionUpdate:
		ev, err = h.Update(ctx, req, state)
	case ActionDelete:
		ev, err = h.Delete(ctx, req, state)
	case ActionList:
		ev, err = h.List(ctx, req)
	default:
		err = fmt.Errorf("unsupported action %q", req.Action)
	}

	if err != nil {
		invocationCounter.WithLabelValues(string(req.Action), "ERROR", "").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	invocationCounter.WithLabelValues(string(req.Action), string(ev.Status), string(ev.ErrorCode)).Inc()
	span.SetAttributes(attribute.String("status", string(ev.Status)))
	if ev.Status == StatusFailed {
		span.SetStatus(codes.Error, ev.Message)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return ev, nil
}

// call issues one MSK API request, recording a span and metrics for it.
func call[T any](ctx context.Context, tracer oteltrace.Tracer, operation string, f func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "msk."+operation, oteltrace.WithSpanKind(oteltrace.SpanKindClient))
	defer span.End()

	start := time.Now()
	out, err := f(ctx)
	remoteCallLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	remoteCallCounter.WithLabelValues(operation, resultCode(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func (h *Handler) describe(ctx context.Context, arn string) (*kafka.DescribeReplicatorOutput, error) {
	clog.InfoContextf(ctx, "Fetching replicator details of resource %s.", arn)
	return call(ctx, h.tracer, "DescribeReplicator", func(ctx context.Context) (*kafka.DescribeReplicatorOutput, error) {
		return h.client.DescribeReplicatorWithContext(ctx, &kafka.DescribeReplicatorInput{ReplicatorArn: aws.String(arn)})
	})
}

// read describes the replicator and returns its snapshot as a success.
func (h *Handler) read(ctx context.Context, token, arn string) (*ProgressEvent, error) {
	out, err := h.describe(ctx, arn)
	if err != nil {
		return fail(ctx, token, err)
	}
	return success(fromDescribe(out)), nil
}

func desired(req *Request) *replicator.Model {
	if req.DesiredResourceState == nil {
		return &replicator.Model{}
	}
	return req.DesiredResourceState
}
