/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package replicator

const (
	testArn        = "arn:aws:kafka:us-east-1:083674906042:replicator/ReplicatorName"
	testSourceArn  = "arn:aws:kafka:us-east-1:083674906042:cluster/SourceCluster"
	testTargetArn  = "arn:aws:kafka:us-east-1:083674906042:cluster/DestinationCluster"
	testRoleArn    = "arn:aws:iam::083674906042:role/ReplicatorRole"
	testCompressed = "GZIP"
)

func testReplicationInfo() ReplicationInfo {
	return ReplicationInfo{
		SourceKafkaClusterArn: testSourceArn,
		TargetKafkaClusterArn: testTargetArn,
		TargetCompressionType: testCompressed,
		TopicReplication: TopicReplication{
			TopicsToReplicate:               []string{"topic-replicate"},
			TopicsToExclude:                 []string{"topic-exclude"},
			CopyTopicConfigurations:         Bool(true),
			CopyAccessControlListsForTopics: Bool(true),
			DetectAndCopyNewTopics:          Bool(true),
		},
		ConsumerGroupReplication: ConsumerGroupReplication{
			ConsumerGroupsToReplicate:       []string{"consumer-group-replicate"},
			ConsumerGroupsToExclude:         []string{"consumer-group-exclude"},
			DetectAndCopyNewConsumerGroups:  Bool(true),
			SynchroniseConsumerGroupOffsets: Bool(true),
		},
	}
}

func testModel() *Model {
	return &Model{
		ReplicatorArn:  testArn,
		ReplicatorName: "ReplicatorName",
		Description:    "replicates topics",
		CurrentVersion: "K1",
		KafkaClusters: []KafkaCluster{{
			AmazonMskCluster: AmazonMskCluster{MskClusterArn: testSourceArn},
			VpcConfig:        VpcConfig{SubnetIds: []string{"subnet-a", "subnet-b"}, SecurityGroupIds: []string{"sg-a"}},
		}, {
			AmazonMskCluster: AmazonMskCluster{MskClusterArn: testTargetArn},
			VpcConfig:        VpcConfig{SubnetIds: []string{"subnet-c"}},
		}},
		ReplicationInfoList:     []ReplicationInfo{testReplicationInfo()},
		ServiceExecutionRoleArn: testRoleArn,
		Tags:                    map[string]string{"team": "streaming"},
	}
}
