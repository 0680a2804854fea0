/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package handler

import (
	"maps"
	"slices"

	"chainguard.dev/mskreplicator/replicator"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/kafka"
)

func toCreateInput(m *replicator.Model, tags map[string]string) *kafka.CreateReplicatorInput {
	in := &kafka.CreateReplicatorInput{
		ReplicatorName:          aws.String(m.ReplicatorName),
		ServiceExecutionRoleArn: aws.String(m.ServiceExecutionRoleArn),
	}
	if m.Description != "" {
		in.Description = aws.String(m.Description)
	}
	if len(tags) > 0 {
		in.Tags = aws.StringMap(tags)
	}
	for _, kc := range m.KafkaClusters {
		in.KafkaClusters = append(in.KafkaClusters, &kafka.KafkaCluster{
			AmazonMskCluster: &kafka.AmazonMskCluster{MskClusterArn: aws.String(kc.AmazonMskCluster.MskClusterArn)},
			VpcConfig:        toVpcConfig(kc.VpcConfig),
		})
	}
	for _, ri := range m.ReplicationInfoList {
		out := &kafka.ReplicationInfo{
			SourceKafkaClusterArn: aws.String(ri.SourceKafkaClusterArn),
			TargetKafkaClusterArn: aws.String(ri.TargetKafkaClusterArn),
			TopicReplication: &kafka.TopicReplication{
				TopicsToReplicate:               aws.StringSlice(ri.TopicReplication.TopicsToReplicate),
				TopicsToExclude:                 aws.StringSlice(ri.TopicReplication.TopicsToExclude),
				CopyTopicConfigurations:         ri.TopicReplication.CopyTopicConfigurations,
				CopyAccessControlListsForTopics: ri.TopicReplication.CopyAccessControlListsForTopics,
				DetectAndCopyNewTopics:          ri.TopicReplication.DetectAndCopyNewTopics,
			},
			ConsumerGroupReplication: &kafka.ConsumerGroupReplication{
				ConsumerGroupsToReplicate:       aws.StringSlice(ri.ConsumerGroupReplication.ConsumerGroupsToReplicate),
				ConsumerGroupsToExclude:         aws.StringSlice(ri.ConsumerGroupReplication.ConsumerGroupsToExclude),
				DetectAndCopyNewConsumerGroups:  ri.ConsumerGroupReplication.DetectAndCopyNewConsumerGroups,
				SynchroniseConsumerGroupOffsets: ri.ConsumerGroupReplication.SynchroniseConsumerGroupOffsets,
			},
		}
		if ri.TargetCompressionType != "" {
			out.TargetCompressionType = aws.String(ri.TargetCompressionType)
		}
		in.ReplicationInfoList = append(in.ReplicationInfoList, out)
	}
	return in
}

func toVpcConfig(v replicator.VpcConfig) *kafka.KafkaClusterClientVpcConfig {
	out := &kafka.KafkaClusterClientVpcConfig{SubnetIds: aws.StringSlice(v.SubnetIds)}
	if len(v.SecurityGroupIds) > 0 {
		out.SecurityGroupIds = aws.StringSlice(v.SecurityGroupIds)
	}
	return out
}

func toUpdateInput(arn, version string, ri replicator.ReplicationInfo) *kafka.UpdateReplicationInfoInput {
	return &kafka.UpdateReplicationInfoInput{
		ReplicatorArn:         aws.String(arn),
		CurrentVersion:        aws.String(version),
		SourceKafkaClusterArn: aws.String(ri.SourceKafkaClusterArn),
		TargetKafkaClusterArn: aws.String(ri.TargetKafkaClusterArn),
		TopicReplication: &kafka.TopicReplicationUpdate{
			TopicsToReplicate:               aws.StringSlice(ri.TopicReplication.TopicsToReplicate),
			TopicsToExclude:                 aws.StringSlice(ri.TopicReplication.TopicsToExclude),
			CopyTopicConfigurations:         ri.TopicReplication.CopyTopicConfigurations,
			CopyAccessControlListsForTopics: ri.TopicReplication.CopyAccessControlListsForTopics,
			DetectAndCopyNewTopics:          ri.TopicReplication.DetectAndCopyNewTopics,
		},
		ConsumerGroupReplication: &kafka.ConsumerGroupReplicationUpdate{
			ConsumerGroupsToReplicate:       aws.StringSlice(ri.ConsumerGroupReplication.ConsumerGroupsToReplicate),
			ConsumerGroupsToExclude:         aws.StringSlice(ri.ConsumerGroupReplication.ConsumerGroupsToExclude),
			DetectAndCopyNewConsumerGroups:  ri.ConsumerGroupReplication.DetectAndCopyNewConsumerGroups,
			SynchroniseConsumerGroupOffsets: ri.ConsumerGroupReplication.SynchroniseConsumerGroupOffsets,
		},
	}
}

// fromDescribe builds a model from a describe response. Replication entries
// name clusters by alias; those are resolved to cluster ARNs.
func fromDescribe(out *kafka.DescribeReplicatorOutput) *replicator.Model {
	m := &replicator.Model{
		ReplicatorArn:           aws.StringValue(out.ReplicatorArn),
		ReplicatorName:          aws.StringValue(out.ReplicatorName),
		Description:             aws.StringValue(out.ReplicatorDescription),
		CurrentVersion:          aws.StringValue(out.CurrentVersion),
		ServiceExecutionRoleArn: aws.StringValue(out.ServiceExecutionRoleArn),
	}
	if len(out.Tags) > 0 {
		m.Tags = aws.StringValueMap(out.Tags)
	}

	aliases := make(map[string]string, len(out.KafkaClusters))
	for _, kc := range out.KafkaClusters {
		if kc == nil {
			continue
		}
		var arn string
		if kc.AmazonMskCluster != nil {
			arn = aws.StringValue(kc.AmazonMskCluster.MskClusterArn)
		}
		aliases[aws.StringValue(kc.KafkaClusterAlias)] = arn

		cluster := replicator.KafkaCluster{AmazonMskCluster: replicator.AmazonMskCluster{MskClusterArn: arn}}
		if kc.VpcConfig != nil {
			cluster.VpcConfig = replicator.VpcConfig{
				SecurityGroupIds: stringValues(kc.VpcConfig.SecurityGroupIds),
				SubnetIds:        stringValues(kc.VpcConfig.SubnetIds),
			}
		}
		m.KafkaClusters = append(m.KafkaClusters, cluster)
	}

	for _, ri := range out.ReplicationInfoList {
		if ri == nil {
			continue
		}
		entry := replicator.ReplicationInfo{
			SourceKafkaClusterArn: aliases[aws.StringValue(ri.SourceKafkaClusterAlias)],
			TargetKafkaClusterArn: aliases[aws.StringValue(ri.TargetKafkaClusterAlias)],
			TargetCompressionType: aws.StringValue(ri.TargetCompressionType),
		}
		if tr := ri.TopicReplication; tr != nil {
			entry.TopicReplication = replicator.TopicReplication{
				TopicsToReplicate:               stringValues(tr.TopicsToReplicate),
				TopicsToExclude:                 stringValues(tr.TopicsToExclude),
				CopyTopicConfigurations:         tr.CopyTopicConfigurations,
				CopyAccessControlListsForTopics: tr.CopyAccessControlListsForTopics,
				DetectAndCopyNewTopics:          tr.DetectAndCopyNewTopics,
			}
		}
		if cg := ri.ConsumerGroupReplication; cg != nil {
			entry.ConsumerGroupReplication = replicator.ConsumerGroupReplication{
				ConsumerGroupsToReplicate:       stringValues(cg.ConsumerGroupsToReplicate),
				ConsumerGroupsToExclude:         stringValues(cg.ConsumerGroupsToExclude),
				DetectAndCopyNewConsumerGroups:  cg.DetectAndCopyNewConsumerGroups,
				SynchroniseConsumerGroupOffsets: cg.SynchroniseConsumerGroupOffsets,
			}
		}
		m.ReplicationInfoList = append(m.ReplicationInfoList, entry)
	}
	return m
}

// fromList returns identity-only models.
func fromList(out *kafka.ListReplicatorsOutput) []*replicator.Model {
	models := make([]*replicator.Model, 0, len(out.Replicators))
	for _, s := range out.Replicators {
		if s == nil {
			continue
		}
		models = append(models, &replicator.Model{ReplicatorArn: aws.StringValue(s.ReplicatorArn)})
	}
	return models
}

// stringValues dereferences in, keeping an absent list absent.
func stringValues(in []*string) []string {
	if len(in) == 0 {
		return nil
	}
	return aws.StringValueSlice(in)
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
