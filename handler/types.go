/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"time"

	"chainguard.dev/mskreplicator/replicator"
)

// Action names the verb a Request asks the handler to perform.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionRead   Action = "READ"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionList   Action = "LIST"
)

// Status is the outcome of one handler invocation.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
)

// ErrorCode classifies a failed outcome.
type ErrorCode string

const (
	ErrorCodeInvalidRequest          ErrorCode = "InvalidRequest"
	ErrorCodeNotFound                ErrorCode = "NotFound"
	ErrorCodeThrottling              ErrorCode = "Throttling"
	ErrorCodeInternalFailure         ErrorCode = "InternalFailure"
	ErrorCodeServiceInternalError    ErrorCode = "ServiceInternalError"
	ErrorCodeGeneralServiceException ErrorCode = "GeneralServiceException"
	ErrorCodeAlreadyExists           ErrorCode = "AlreadyExists"
	ErrorCodeNotStabilized           ErrorCode = "NotStabilized"
)

// Request is one invocation supplied by the host.
type Request struct {
	Action             Action `json:"action"`
	ClientRequestToken string `json:"clientRequestToken"`

	DesiredResourceState  *replicator.Model `json:"desiredResourceState,omitempty"`
	PreviousResourceState *replicator.Model `json:"previousResourceState,omitempty"`

	// Tags applied by the host on top of the model's own tags.
	DesiredResourceTags  map[string]string `json:"desiredResourceTags,omitempty"`
	PreviousResourceTags map[string]string `json:"previousResourceTags,omitempty"`

	// NextToken continues a List from a previous page.
	NextToken string `json:"nextToken,omitempty"`
}

// Stage records which phase of a multi-invocation operation comes next.
type Stage string

const (
	StageCreateStabilize Stage = "create-stabilize"
	StageUpdateStabilize Stage = "update-stabilize"
	StagePreDelete       Stage = "pre-delete"
	StageDeleteStabilize Stage = "delete-stabilize"
)

// CallbackState is carried between invocations of the same operation. It is
// the only memory the handler keeps across polls and must survive a JSON
// round trip.
type CallbackState struct {
	Stage         Stage     `json:"stage"`
	StartedAt     time.Time `json:"startedAt"`
	ReplicatorArn string    `json:"replicatorArn,omitempty"`
}

// ProgressEvent is the outcome record returned to the host.
type ProgressEvent struct {
	Status Status `json:"status"`

	Model     *replicator.Model   `json:"resourceModel,omitempty"`
	Models    []*replicator.Model `json:"resourceModels,omitempty"`
	NextToken string              `json:"nextToken,omitempty"`

	// Set when Status is IN_PROGRESS.
	CallbackState *CallbackState `json:"callbackContext,omitempty"`
	CallbackDelay time.Duration  `json:"callbackDelay,omitempty"`

	// Set when Status is FAILED.
	ErrorCode ErrorCode `json:"errorCode,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Terminal reports whether the host should stop re-invoking.
func (p *ProgressEvent) Terminal() bool {
	return p.Status != StatusInProgress
}

func success(m *replicator.Model) *ProgressEvent {
	return &ProgressEvent{Status: StatusSuccess, Model: m}
}

func inProgress(state *CallbackState, delay time.Duration) *ProgressEvent {
	return &ProgressEvent{Status: StatusInProgress, CallbackState: state, CallbackDelay: delay}
}
