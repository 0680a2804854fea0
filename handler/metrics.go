/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"errors"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	invocationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mskreplicator_handler_invocations_total",
			Help: "Total number of handler invocations by outcome",
		},
		[]string{"action", "status", "error_code"},
	)

	remoteCallCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mskreplicator_remote_calls_total",
			Help: "Total number of MSK API calls by operation and result code",
		},
		[]string{"operation", "code"},
	)

	remoteCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mskreplicator_remote_call_duration_seconds",
			Help:    "Latency of MSK API calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// resultCode labels a remote call result with the AWS error code, "OK" on
// success and "Unknown" for faults that carry no code.
func resultCode(err error) string {
	if err == nil {
		return "OK"
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code()
	}
	return "Unknown"
}
