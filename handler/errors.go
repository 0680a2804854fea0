/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/mskreplicator/replicator"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/kafka"
	"github.com/chainguard-dev/clog"
)

const (
	// MultipleUpdatesUnsupported is returned when more than one mutable
	// attribute group would change in one update.
	MultipleUpdatesUnsupported = "You can't update multiple attributes of the replicator in " +
		"same request. Use a different request for each update."

	identityParameter       = "replicatorArn"
	invalidParameterMessage = "One or more of the parameters are not valid"
)

// HandlerError is a failure raised inside the handler whose code is already
// decided. The classifier passes it through unchanged.
type HandlerError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *HandlerError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

func notStabilized(arn string) error {
	return &HandlerError{
		Code:    ErrorCodeNotStabilized,
		Message: fmt.Sprintf("Resource of type '%s' with identifier '%s' did not stabilize.", replicator.TypeName, arn),
	}
}

func alreadyExists(name string, err error) error {
	return &HandlerError{
		Code:    ErrorCodeAlreadyExists,
		Message: fmt.Sprintf("Resource of type '%s' with identifier '%s' already exists.", replicator.TypeName, name),
		Err:     err,
	}
}

func notFound(arn string, err error) error {
	return &HandlerError{
		Code:    ErrorCodeNotFound,
		Message: fmt.Sprintf("Resource of type '%s' with identifier '%s' was not found.", replicator.TypeName, arn),
		Err:     err,
	}
}

func invalidRequest(err error) error {
	return &HandlerError{
		Code:    ErrorCodeInvalidRequest,
		Message: "Invalid request provided: " + messageOf(err),
		Err:     err,
	}
}

// isInvalidIdentity reports whether err is the bad-request fault the service
// raises for a malformed or unknown replicator ARN.
func isInvalidIdentity(err error) bool {
	var bre *kafka.BadRequestException
	if !errors.As(err, &bre) {
		return false
	}
	return aws.StringValue(bre.InvalidParameter) == identityParameter &&
		strings.Contains(bre.Message(), invalidParameterMessage)
}

// isGone reports whether err means the replicator no longer exists.
func isGone(err error) bool {
	var nfe *kafka.NotFoundException
	return errors.As(err, &nfe) || isInvalidIdentity(err)
}

func isBadRequest(err error) bool {
	var bre *kafka.BadRequestException
	return errors.As(err, &bre)
}

// messageOf returns the service message of an AWS fault, or the error text.
func messageOf(err error) string {
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Message() != "" {
		return aerr.Message()
	}
	return err.Error()
}

// classify maps err onto an ErrorCode. The boolean is false when err is not
// a fault the handler knows how to report.
func classify(err error) (ErrorCode, string, bool) {
	var (
		herr        *HandlerError
		verr        *replicator.ValidationError
		badRequest  *kafka.BadRequestException
		forbidden   *kafka.ForbiddenException
		unauth      *kafka.UnauthorizedException
		internal    *kafka.InternalServerErrorException
		unavailable *kafka.ServiceUnavailableException
		throttled   *kafka.TooManyRequestsException
		missing     *kafka.NotFoundException
		reqFailure  awserr.RequestFailure
	)
	switch {
	case errors.As(err, &herr):
		return herr.Code, herr.Error(), true
	case errors.As(err, &verr):
		return ErrorCodeInvalidRequest, err.Error(), true
	case errors.As(err, &badRequest):
		return ErrorCodeInvalidRequest, fmt.Sprintf("%s '%s'", badRequest.Message(), aws.StringValue(badRequest.InvalidParameter)), true
	case errors.As(err, &forbidden), errors.As(err, &unauth):
		return ErrorCodeInvalidRequest, messageOf(err), true
	case errors.As(err, &internal):
		return ErrorCodeInternalFailure, messageOf(err), true
	case errors.As(err, &unavailable):
		return ErrorCodeServiceInternalError, messageOf(err), true
	case errors.As(err, &throttled):
		return ErrorCodeThrottling, messageOf(err), true
	case errors.As(err, &missing):
		return ErrorCodeNotFound, messageOf(err), true
	case errors.As(err, &reqFailure):
		// Only faults answered by the service carry a status. Client-side
		// faults (RequestError, RequestCanceled) fall through unclassified.
		if reqFailure.StatusCode() >= 500 {
			return ErrorCodeServiceInternalError, messageOf(err), true
		}
		return ErrorCodeGeneralServiceException, messageOf(err), true
	default:
		return "", "", false
	}
}

// fail turns err into a FAILED outcome carrying the request token. Faults the
// classifier does not recognize are returned as errors.
func fail(ctx context.Context, token string, err error) (*ProgressEvent, error) {
	code, msg, ok := classify(err)
	if !ok {
		clog.ErrorContextf(ctx, "[ClientRequestToken: %s] unclassified failure: %v", token, err)
		return nil, fmt.Errorf("[ClientRequestToken: %s] %w", token, err)
	}
	switch code {
	case ErrorCodeInternalFailure, ErrorCodeServiceInternalError:
		clog.ErrorContextf(ctx, "[ClientRequestToken: %s] MSK internal failure (%s): %v", token, code, err)
	default:
		clog.WarnContextf(ctx, "[ClientRequestToken: %s] MSK API request failed (%s): %v", token, code, err)
	}
	return &ProgressEvent{
		Status:    StatusFailed,
		ErrorCode: code,
		Message:   fmt.Sprintf("[ClientRequestToken: %s] %s", token, msg),
	}, nil
}
