/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package replicator

import (
	"maps"
	"slices"
)

// TypeName is the resource type name reported in errors.
const TypeName = "AWS::MSK::Replicator"

// Model is the desired or observed configuration of one replicator.
type Model struct {
	ReplicatorArn           string            `json:"replicatorArn,omitempty" yaml:"replicatorArn,omitempty"`
	ReplicatorName          string            `json:"replicatorName,omitempty" yaml:"replicatorName,omitempty"`
	Description             string            `json:"description,omitempty" yaml:"description,omitempty"`
	CurrentVersion          string            `json:"currentVersion,omitempty" yaml:"currentVersion,omitempty"`
	KafkaClusters           []KafkaCluster    `json:"kafkaClusters,omitempty" yaml:"kafkaClusters,omitempty"`
	ReplicationInfoList     []ReplicationInfo `json:"replicationInfoList,omitempty" yaml:"replicationInfoList,omitempty"`
	ServiceExecutionRoleArn string            `json:"serviceExecutionRoleArn,omitempty" yaml:"serviceExecutionRoleArn,omitempty"`
	Tags                    map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// KafkaCluster is one cluster endpoint the replicator connects to.
type KafkaCluster struct {
	AmazonMskCluster AmazonMskCluster `json:"amazonMskCluster" yaml:"amazonMskCluster"`
	VpcConfig        VpcConfig        `json:"vpcConfig" yaml:"vpcConfig"`
}

// AmazonMskCluster identifies an MSK cluster by ARN.
type AmazonMskCluster struct {
	MskClusterArn string `json:"mskClusterArn" yaml:"mskClusterArn"`
}

// VpcConfig is the client connectivity configuration for a cluster.
type VpcConfig struct {
	SecurityGroupIds []string `json:"securityGroupIds,omitempty" yaml:"securityGroupIds,omitempty"`
	SubnetIds        []string `json:"subnetIds" yaml:"subnetIds"`
}

// ReplicationInfo pairs a source and target cluster with the topic and
// consumer-group replication settings between them. The (source, target)
// pair identifies the entry within a Model.
type ReplicationInfo struct {
	SourceKafkaClusterArn    string                   `json:"sourceKafkaClusterArn" yaml:"sourceKafkaClusterArn"`
	TargetKafkaClusterArn    string                   `json:"targetKafkaClusterArn" yaml:"targetKafkaClusterArn"`
	TargetCompressionType    string                   `json:"targetCompressionType,omitempty" yaml:"targetCompressionType,omitempty"`
	TopicReplication         TopicReplication         `json:"topicReplication" yaml:"topicReplication"`
	ConsumerGroupReplication ConsumerGroupReplication `json:"consumerGroupReplication" yaml:"consumerGroupReplication"`
}

// TopicReplication selects which topics are replicated and how.
type TopicReplication struct {
	TopicsToReplicate               []string `json:"topicsToReplicate" yaml:"topicsToReplicate"`
	TopicsToExclude                 []string `json:"topicsToExclude,omitempty" yaml:"topicsToExclude,omitempty"`
	CopyTopicConfigurations         *bool    `json:"copyTopicConfigurations,omitempty" yaml:"copyTopicConfigurations,omitempty"`
	CopyAccessControlListsForTopics *bool    `json:"copyAccessControlListsForTopics,omitempty" yaml:"copyAccessControlListsForTopics,omitempty"`
	DetectAndCopyNewTopics          *bool    `json:"detectAndCopyNewTopics,omitempty" yaml:"detectAndCopyNewTopics,omitempty"`
}

// ConsumerGroupReplication selects which consumer groups are replicated and how.
type ConsumerGroupReplication struct {
	ConsumerGroupsToReplicate       []string `json:"consumerGroupsToReplicate" yaml:"consumerGroupsToReplicate"`
	ConsumerGroupsToExclude         []string `json:"consumerGroupsToExclude,omitempty" yaml:"consumerGroupsToExclude,omitempty"`
	DetectAndCopyNewConsumerGroups  *bool    `json:"detectAndCopyNewConsumerGroups,omitempty" yaml:"detectAndCopyNewConsumerGroups,omitempty"`
	SynchroniseConsumerGroupOffsets *bool    `json:"synchroniseConsumerGroupOffsets,omitempty" yaml:"synchroniseConsumerGroupOffsets,omitempty"`
}

// Clone returns a deep copy of the model. A nil model clones to nil.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	out := *m
	out.Tags = maps.Clone(m.Tags)
	if m.KafkaClusters != nil {
		out.KafkaClusters = make([]KafkaCluster, len(m.KafkaClusters))
		for i, kc := range m.KafkaClusters {
			kc.VpcConfig.SecurityGroupIds = slices.Clone(kc.VpcConfig.SecurityGroupIds)
			kc.VpcConfig.SubnetIds = slices.Clone(kc.VpcConfig.SubnetIds)
			out.KafkaClusters[i] = kc
		}
	}
	if m.ReplicationInfoList != nil {
		out.ReplicationInfoList = make([]ReplicationInfo, len(m.ReplicationInfoList))
		for i, ri := range m.ReplicationInfoList {
			out.ReplicationInfoList[i] = ri.clone()
		}
	}
	return &out
}

func (ri ReplicationInfo) clone() ReplicationInfo {
	tr := ri.TopicReplication
	tr.TopicsToReplicate = slices.Clone(tr.TopicsToReplicate)
	tr.TopicsToExclude = slices.Clone(tr.TopicsToExclude)
	tr.CopyTopicConfigurations = cloneBool(tr.CopyTopicConfigurations)
	tr.CopyAccessControlListsForTopics = cloneBool(tr.CopyAccessControlListsForTopics)
	tr.DetectAndCopyNewTopics = cloneBool(tr.DetectAndCopyNewTopics)

	cg := ri.ConsumerGroupReplication
	cg.ConsumerGroupsToReplicate = slices.Clone(cg.ConsumerGroupsToReplicate)
	cg.ConsumerGroupsToExclude = slices.Clone(cg.ConsumerGroupsToExclude)
	cg.DetectAndCopyNewConsumerGroups = cloneBool(cg.DetectAndCopyNewConsumerGroups)
	cg.SynchroniseConsumerGroupOffsets = cloneBool(cg.SynchroniseConsumerGroupOffsets)

	ri.TopicReplication = tr
	ri.ConsumerGroupReplication = cg
	return ri
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Bool returns a pointer to b, for building models in code.
func Bool(b bool) *bool {
	return &b
}
