/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"context"
	"testing"
	"time"

	"chainguard.dev/mskreplicator/replicator"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/kafka"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func updateRequest(desired *replicator.Model) *Request {
	return &Request{
		Action:                ActionUpdate,
		ClientRequestToken:    testToken,
		DesiredResourceState:  desired,
		PreviousResourceState: testModel(),
	}
}

func TestUpdateNoChanges(t *testing.T) {
	client := &fakeClient{}
	client.describeState(replicator.StateRunning)
	h := newHandler(client, newClock())

	want := testModel()
	ev, err := h.Invoke(context.Background(), updateRequest(want), nil)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, ev.Status)
	if diff := cmp.Diff(want, ev.Model); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"DescribeReplicator"}, client.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	// The returned model must not alias the request's.
	ev.Model.Tags["added"] = "later"
	ev.Model.ReplicationInfoList[0].TopicReplication.TopicsToReplicate[0] = "changed"
	if diff := cmp.Diff(testModel(), want); diff != "" {
		t.Errorf("desired state was modified through the result (-want +got):\n%s", diff)
	}
}

func TestUpdateTags(t *testing.T) {
	client := &fakeClient{}
	client.describeState(replicator.StateRunning)
	h := newHandler(client, newClock())

	previous := testModel()
	previous.Tags = map[string]string{"A": "1", "B": "2"}
	desired := testModel()
	desired.Tags = map[string]string{"A": "1", "C": "3"}

	req := updateRequest(desired)
	req.PreviousResourceState = previous

	ev, err := h.Invoke(context.Background(), req, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, ev.Status)

	if diff := cmp.Diff([]string{"DescribeReplicator", "UntagResource", "TagResource"}, client.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"B"}, client.untagged); diff != "" {
		t.Errorf("untagged mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"C": "3"}, client.tagged); diff != "" {
		t.Errorf("tagged mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateHostTags(t *testing.T) {
	client := &fakeClient{}
	client.describeState(replicator.StateRunning)
	h := newHandler(client, newClock())

	req := updateRequest(testModel())
	req.PreviousResourceTags = map[string]string{"stack": "one"}
	req.DesiredResourceTags = map[string]string{"stack": "one", "env": "prod"}

	ev, err := h.Invoke(context.Background(), req, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, ev.Status)

	if diff := cmp.Diff([]string{"DescribeReplicator", "TagResource"}, client.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"env": "prod"}, client.tagged); diff != "" {
		t.Errorf("tagged mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateTagFault(t *testing.T) {
	client := &fakeClient{tagErr: &kafka.ForbiddenException{Message_: aws.String("denied")}}
	client.describeState(replicator.StateRunning)
	h := newHandler(client, newClock())

	desired := testModel()
	desired.Tags = map[string]string{"team": "streaming", "new": "tag"}
	ev, err := h.Invoke(context.Background(), updateRequest(desired), nil)
	require.NoError(t, err)
	if ev.ErrorCode != ErrorCodeInvalidRequest {
		t.Errorf("ErrorCode = %s, want %s", ev.ErrorCode, ErrorCodeInvalidRequest)
	}
}

func TestUpdateMultipleChanges(t *testing.T) {
	client := &fakeClient{}
	client.describeState(replicator.StateRunning)
	h := newHandler(client, newClock())

	desired := testModel()
	topics := desired.ReplicationInfoList[0]
	topics.TopicReplication.CopyTopicConfigurations = replicator.Bool(false)
	groups := testModel().ReplicationInfoList[0]
	groups.ConsumerGroupReplication.DetectAndCopyNewConsumerGroups = replicator.Bool(false)
	desired.ReplicationInfoList = []replicator.ReplicationInfo{topics, groups}
	desired.Tags = map[string]string{"would": "change"}

	ev, err := h.Invoke(context.Background(), updateRequest(desired), nil)
	require.NoError(t, err)
	if ev.ErrorCode != ErrorCodeInvalidRequest {
		t.Fatalf("ErrorCode = %s, want %s", ev.ErrorCode, ErrorCodeInvalidRequest)
	}
	if want := "[ClientRequestToken: " + testToken + "] " + MultipleUpdatesUnsupported; ev.Message != want {
		t.Errorf("Message = %q, want %q", ev.Message, want)
	}
	if diff := cmp.Diff([]string{"DescribeReplicator"}, client.calls); diff != "" {
		t.Errorf("no mutating call expected (-want +got):\n%s", diff)
	}
}

func TestUpdateReplicationInfo(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	client := &fakeClient{}
	client.describeState(replicator.StateRunning).
		describeState(replicator.StateUpdating).
		describeState(replicator.StateRunning).
		describeState(replicator.StateRunning)
	h := newHandler(client, clock)

	desired := testModel()
	desired.CurrentVersion = "K2"
	desired.ReplicationInfoList[0].TopicReplication.TopicsToReplicate = []string{"topic-replicate", "topic-new"}

	ev, err := h.Invoke(ctx, updateRequest(desired), nil)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, ev.Status)
	if ev.CallbackDelay != time.Minute {
		t.Errorf("CallbackDelay = %v, want 1m", ev.CallbackDelay)
	}
	if ev.CallbackState.Stage != StageUpdateStabilize {
		t.Errorf("Stage = %s, want %s", ev.CallbackState.Stage, StageUpdateStabilize)
	}

	in := client.updateIn
	require.NotNil(t, in)
	if got := aws.StringValue(in.CurrentVersion); got != "K2" {
		t.Errorf("CurrentVersion = %q, want K2", got)
	}
	if got := aws.StringValue(in.SourceKafkaClusterArn); got != testSourceArn {
		t.Errorf("SourceKafkaClusterArn = %q, want %q", got, testSourceArn)
	}
	if diff := cmp.Diff([]string{"topic-replicate", "topic-new"}, aws.StringValueSlice(in.TopicReplication.TopicsToReplicate)); diff != "" {
		t.Errorf("TopicsToReplicate mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(time.Minute)
	ev, err = h.Invoke(ctx, updateRequest(desired), roundTrip(t, ev.CallbackState))
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, ev.Status)
	if diff := cmp.Diff(testModel(), ev.Model); diff != "" {
		t.Errorf("final read mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []string{"DescribeReplicator", "UpdateReplicationInfo", "DescribeReplicator", "DescribeReplicator", "DescribeReplicator"}
	if diff := cmp.Diff(wantCalls, client.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateVersionFallback(t *testing.T) {
	client := &fakeClient{}
	client.describeState(replicator.StateRunning).describeState(replicator.StateRunning).describeState(replicator.StateRunning)
	h := newHandler(client, newClock())

	desired := testModel()
	desired.CurrentVersion = ""
	desired.ReplicationInfoList[0].ConsumerGroupReplication.SynchroniseConsumerGroupOffsets = replicator.Bool(false)

	ev, err := h.Invoke(context.Background(), updateRequest(desired), nil)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, ev.Status)
	if got := aws.StringValue(client.updateIn.CurrentVersion); got != "K1" {
		t.Errorf("CurrentVersion = %q, want the version just read", got)
	}
}

func TestUpdateDescribeFault(t *testing.T) {
	client := &fakeClient{}
	client.describeError(notFoundFault())
	h := newHandler(client, newClock())

	ev, err := h.Invoke(context.Background(), updateRequest(testModel()), nil)
	require.NoError(t, err)
	if ev.ErrorCode != ErrorCodeNotFound {
		t.Errorf("ErrorCode = %s, want %s", ev.ErrorCode, ErrorCodeNotFound)
	}
	if diff := cmp.Diff([]string{"DescribeReplicator"}, client.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateStabilizeUnexpectedState(t *testing.T) {
	client := &fakeClient{}
	client.describeState(replicator.StateRunning).describeState(replicator.StateFailed)
	h := newHandler(client, newClock())

	desired := testModel()
	desired.ReplicationInfoList[0].TopicReplication.TopicsToExclude = nil

	ev, err := h.Invoke(context.Background(), updateRequest(desired), nil)
	require.NoError(t, err)
	if ev.ErrorCode != ErrorCodeNotStabilized {
		t.Errorf("ErrorCode = %s, want %s", ev.ErrorCode, ErrorCodeNotStabilized)
	}
}

func TestUpdateTimeout(t *testing.T) {
	clock := newClock()
	client := &fakeClient{}
	h := newHandler(client, clock)

	state := &CallbackState{Stage: StageUpdateStabilize, StartedAt: clock.now, ReplicatorArn: testArn}
	clock.Advance(720 * time.Minute)

	ev, err := h.Invoke(context.Background(), updateRequest(testModel()), state)
	require.NoError(t, err)
	if ev.ErrorCode != ErrorCodeNotStabilized {
		t.Errorf("ErrorCode = %s, want %s", ev.ErrorCode, ErrorCodeNotStabilized)
	}
	if len(client.calls) != 0 {
		t.Errorf("calls = %v, want none", client.calls)
	}
}
