/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workqueue

import (
	"errors"
	"fmt"
	"time"
)

type requeueError struct {
	delay time.Duration
}

func (e *requeueError) Error() string {
	return fmt.Sprintf("requeue after %v", e.delay)
}

// RequeueAfter returns an error asking the dispatcher to process the key
// again after delay. It is not a failure and does not count as an attempt.
func RequeueAfter(delay time.Duration) error {
	return &requeueError{delay: delay}
}

// GetRequeueDelay extracts the delay from an error built by RequeueAfter.
func GetRequeueDelay(err error) (time.Duration, bool) {
	var re *requeueError
	if errors.As(err, &re) {
		return re.delay, true
	}
	return 0, false
}

// NonRetriableDetails describes why a key must not be retried.
type NonRetriableDetails struct {
	Message string
}

type nonRetriableError struct {
	err     error
	details NonRetriableDetails
}

func (e *nonRetriableError) Error() string {
	return fmt.Sprintf("non-retriable: %v (%s)", e.err, e.details.Message)
}

func (e *nonRetriableError) Unwrap() error { return e.err }

// NonRetriableError marks err as permanent. The dispatcher completes the key
// instead of requeueing it.
func NonRetriableError(err error, reason string) error {
	if err == nil {
		return nil
	}
	return &nonRetriableError{err: err, details: NonRetriableDetails{Message: reason}}
}

// GetNonRetriableDetails returns the details of a non-retriable error, or nil.
func GetNonRetriableDetails(err error) *NonRetriableDetails {
	var nre *nonRetriableError
	if errors.As(err, &nre) {
		return &nre.details
	}
	return nil
}
