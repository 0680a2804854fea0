/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"fmt"
	"time"

	"chainguard.dev/mskreplicator/replicator"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/kafka"
	"github.com/aws/aws-sdk-go/service/kafka/kafkaiface"
)

const (
	testToken     = "a8d4b1c2-0f00-4a6e-9b55-3c0e6d1f2a77"
	testArn       = "arn:aws:kafka:us-east-1:083674906042:replicator/ReplicatorName"
	testName      = "ReplicatorName"
	testSourceArn = "arn:aws:kafka:us-east-1:083674906042:cluster/SourceCluster"
	testTargetArn = "arn:aws:kafka:us-east-1:083674906042:cluster/DestinationCluster"
	testRoleArn   = "arn:aws:iam::083674906042:role/ReplicatorRole"
)

type describeResult struct {
	out *kafka.DescribeReplicatorOutput
	err error
}

// fakeClient scripts MSK API responses and records the calls it receives.
// Methods the handler does not use fall through to the nil embedded
// interface and panic.
type fakeClient struct {
	kafkaiface.KafkaAPI

	calls []string

	createIn  *kafka.CreateReplicatorInput
	createOut *kafka.CreateReplicatorOutput
	createErr error

	describes []describeResult

	updateIn  *kafka.UpdateReplicationInfoInput
	updateErr error

	deleteErr error

	listIn  *kafka.ListReplicatorsInput
	listOut *kafka.ListReplicatorsOutput
	listErr error

	tagged   map[string]string
	tagErr   error
	untagged []string
}

func (f *fakeClient) CreateReplicatorWithContext(_ aws.Context, in *kafka.CreateReplicatorInput, _ ...request.Option) (*kafka.CreateReplicatorOutput, error) {
	f.calls = append(f.calls, "CreateReplicator")
	f.createIn = in
	return f.createOut, f.createErr
}

func (f *fakeClient) DescribeReplicatorWithContext(_ aws.Context, in *kafka.DescribeReplicatorInput, _ ...request.Option) (*kafka.DescribeReplicatorOutput, error) {
	f.calls = append(f.calls, "DescribeReplicator")
	if len(f.describes) == 0 {
		return nil, fmt.Errorf("unexpected describe of %s", aws.StringValue(in.ReplicatorArn))
	}
	next := f.describes[0]
	f.describes = f.describes[1:]
	return next.out, next.err
}

func (f *fakeClient) UpdateReplicationInfoWithContext(_ aws.Context, in *kafka.UpdateReplicationInfoInput, _ ...request.Option) (*kafka.UpdateReplicationInfoOutput, error) {
	f.calls = append(f.calls, "UpdateReplicationInfo")
	f.updateIn = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &kafka.UpdateReplicationInfoOutput{ReplicatorArn: in.ReplicatorArn, ReplicatorState: aws.String("UPDATING")}, nil
}

func (f *fakeClient) DeleteReplicatorWithContext(_ aws.Context, in *kafka.DeleteReplicatorInput, _ ...request.Option) (*kafka.DeleteReplicatorOutput, error) {
	f.calls = append(f.calls, "DeleteReplicator")
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &kafka.DeleteReplicatorOutput{ReplicatorArn: in.ReplicatorArn, ReplicatorState: aws.String("DELETING")}, nil
}

func (f *fakeClient) ListReplicatorsWithContext(_ aws.Context, in *kafka.ListReplicatorsInput, _ ...request.Option) (*kafka.ListReplicatorsOutput, error) {
	f.calls = append(f.calls, "ListReplicators")
	f.listIn = in
	return f.listOut, f.listErr
}

func (f *fakeClient) TagResourceWithContext(_ aws.Context, in *kafka.TagResourceInput, _ ...request.Option) (*kafka.TagResourceOutput, error) {
	f.calls = append(f.calls, "TagResource")
	f.tagged = aws.StringValueMap(in.Tags)
	return &kafka.TagResourceOutput{}, f.tagErr
}

func (f *fakeClient) UntagResourceWithContext(_ aws.Context, in *kafka.UntagResourceInput, _ ...request.Option) (*kafka.UntagResourceOutput, error) {
	f.calls = append(f.calls, "UntagResource")
	f.untagged = aws.StringValueSlice(in.TagKeys)
	return &kafka.UntagResourceOutput{}, nil
}

func (f *fakeClient) describeState(state replicator.State) *fakeClient {
	f.describes = append(f.describes, describeResult{out: describeOutput(state)})
	return f
}

func (f *fakeClient) describeError(err error) *fakeClient {
	f.describes = append(f.describes, describeResult{err: err})
	return f
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func describeOutput(state replicator.State) *kafka.DescribeReplicatorOutput {
	return &kafka.DescribeReplicatorOutput{
		ReplicatorArn:           aws.String(testArn),
		ReplicatorName:          aws.String(testName),
		ReplicatorDescription:   aws.String("replicates topics"),
		ReplicatorState:         aws.String(string(state)),
		CurrentVersion:          aws.String("K1"),
		ServiceExecutionRoleArn: aws.String(testRoleArn),
		Tags:                    aws.StringMap(map[string]string{"team": "streaming"}),
		KafkaClusters: []*kafka.KafkaClusterDescription{{
			KafkaClusterAlias: aws.String("Source"),
			AmazonMskCluster:  &kafka.AmazonMskCluster{MskClusterArn: aws.String(testSourceArn)},
			VpcConfig: &kafka.KafkaClusterClientVpcConfig{
				SubnetIds:        aws.StringSlice([]string{"subnet-a", "subnet-b"}),
				SecurityGroupIds: aws.StringSlice([]string{"sg-a"}),
			},
		}, {
			KafkaClusterAlias: aws.String("Destination"),
			AmazonMskCluster:  &kafka.AmazonMskCluster{MskClusterArn: aws.String(testTargetArn)},
			VpcConfig: &kafka.KafkaClusterClientVpcConfig{
				SubnetIds: aws.StringSlice([]string{"subnet-c"}),
			},
		}},
		ReplicationInfoList: []*kafka.ReplicationInfoDescription{{
			SourceKafkaClusterAlias: aws.String("Source"),
			TargetKafkaClusterAlias: aws.String("Destination"),
			TargetCompressionType:   aws.String("GZIP"),
			TopicReplication: &kafka.TopicReplication{
				TopicsToReplicate:               aws.StringSlice([]string{"topic-replicate"}),
				TopicsToExclude:                 aws.StringSlice([]string{"topic-exclude"}),
				CopyTopicConfigurations:         aws.Bool(true),
				CopyAccessControlListsForTopics: aws.Bool(true),
				DetectAndCopyNewTopics:          aws.Bool(true),
			},
			ConsumerGroupReplication: &kafka.ConsumerGroupReplication{
				ConsumerGroupsToReplicate:       aws.StringSlice([]string{"consumer-group-replicate"}),
				ConsumerGroupsToExclude:         aws.StringSlice([]string{"consumer-group-exclude"}),
				DetectAndCopyNewConsumerGroups:  aws.Bool(true),
				SynchroniseConsumerGroupOffsets: aws.Bool(true),
			},
		}},
	}
}

// testModel is the snapshot describeOutput translates to.
func testModel() *replicator.Model {
	return &replicator.Model{
		ReplicatorArn:  testArn,
		ReplicatorName: testName,
		Description:    "replicates topics",
		CurrentVersion: "K1",
		KafkaClusters: []replicator.KafkaCluster{{
			AmazonMskCluster: replicator.AmazonMskCluster{MskClusterArn: testSourceArn},
			VpcConfig:        replicator.VpcConfig{SubnetIds: []string{"subnet-a", "subnet-b"}, SecurityGroupIds: []string{"sg-a"}},
		}, {
			AmazonMskCluster: replicator.AmazonMskCluster{MskClusterArn: testTargetArn},
			VpcConfig:        replicator.VpcConfig{SubnetIds: []string{"subnet-c"}},
		}},
		ReplicationInfoList: []replicator.ReplicationInfo{{
			SourceKafkaClusterArn: testSourceArn,
			TargetKafkaClusterArn: testTargetArn,
			TargetCompressionType: "GZIP",
			TopicReplication: replicator.TopicReplication{
				TopicsToReplicate:               []string{"topic-replicate"},
				TopicsToExclude:                 []string{"topic-exclude"},
				CopyTopicConfigurations:         replicator.Bool(true),
				CopyAccessControlListsForTopics: replicator.Bool(true),
				DetectAndCopyNewTopics:          replicator.Bool(true),
			},
			ConsumerGroupReplication: replicator.ConsumerGroupReplication{
				ConsumerGroupsToReplicate:       []string{"consumer-group-replicate"},
				ConsumerGroupsToExclude:         []string{"consumer-group-exclude"},
				DetectAndCopyNewConsumerGroups:  replicator.Bool(true),
				SynchroniseConsumerGroupOffsets: replicator.Bool(true),
			},
		}},
		ServiceExecutionRoleArn: testRoleArn,
		Tags:                    map[string]string{"team": "streaming"},
	}
}

func invalidArnFault() error {
	return &kafka.BadRequestException{
		Message_:         aws.String("One or more of the parameters are not valid."),
		InvalidParameter: aws.String("replicatorArn"),
	}
}

func notFoundFault() error {
	return &kafka.NotFoundException{Message_: aws.String("Replicator does not exist")}
}
