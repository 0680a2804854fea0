/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package replicator

import (
	"slices"
)

// ChangeDetector reports whether one independent group of mutable attributes
// differs between two snapshots.
type ChangeDetector struct {
	// Name identifies the attribute group in logs and errors.
	Name string

	// Changed is a pure function of the two snapshots.
	Changed func(desired, current *Model) bool
}

// UpdateDetectors lists every mutable attribute group that an update can
// change. Tags are reconciled separately and are not listed here.
var UpdateDetectors = []ChangeDetector{{
	Name: "ReplicationInfo",
	Changed: func(desired, current *Model) bool {
		return len(ChangedReplicationInfos(desired, current)) > 0
	},
}}

// ChangedGroups returns the names of the detectors in UpdateDetectors that
// report a change, in registration order.
func ChangedGroups(desired, current *Model) []string {
	var names []string
	for _, d := range UpdateDetectors {
		if d.Changed(desired, current) {
			names = append(names, d.Name)
		}
	}
	return names
}

type pairKey struct {
	source, target string
}

func keyOf(ri ReplicationInfo) pairKey {
	return pairKey{source: ri.SourceKafkaClusterArn, target: ri.TargetKafkaClusterArn}
}

// ChangedReplicationInfos returns the desired entries whose topic or
// consumer-group settings differ from the current entry with the same
// (source, target) pair.
//
// Entries present on only one side are not matched and are never reported.
func ChangedReplicationInfos(desired, current *Model) []ReplicationInfo {
	if desired == nil || current == nil {
		return nil
	}
	byKey := make(map[pairKey]ReplicationInfo, len(current.ReplicationInfoList))
	for _, ri := range current.ReplicationInfoList {
		byKey[keyOf(ri)] = ri
	}

	var changed []ReplicationInfo
	for _, want := range desired.ReplicationInfoList {
		got, ok := byKey[keyOf(want)]
		if !ok {
			continue
		}
		if !topicReplicationEqual(want.TopicReplication, got.TopicReplication) ||
			!consumerGroupReplicationEqual(want.ConsumerGroupReplication, got.ConsumerGroupReplication) {
			changed = append(changed, want)
		}
	}
	return changed
}

func topicReplicationEqual(a, b TopicReplication) bool {
	return sameSet(a.TopicsToReplicate, b.TopicsToReplicate) &&
		sameSet(a.TopicsToExclude, b.TopicsToExclude) &&
		sameFlag(a.CopyTopicConfigurations, b.CopyTopicConfigurations) &&
		sameFlag(a.CopyAccessControlListsForTopics, b.CopyAccessControlListsForTopics) &&
		sameFlag(a.DetectAndCopyNewTopics, b.DetectAndCopyNewTopics)
}

func consumerGroupReplicationEqual(a, b ConsumerGroupReplication) bool {
	return sameSet(a.ConsumerGroupsToReplicate, b.ConsumerGroupsToReplicate) &&
		sameSet(a.ConsumerGroupsToExclude, b.ConsumerGroupsToExclude) &&
		sameFlag(a.DetectAndCopyNewConsumerGroups, b.DetectAndCopyNewConsumerGroups) &&
		sameFlag(a.SynchroniseConsumerGroupOffsets, b.SynchroniseConsumerGroupOffsets)
}

// sameSet compares two slices as sets. A nil slice equals an empty one.
func sameSet(a, b []string) bool {
	a, b = dedupe(a), dedupe(b)
	return slices.Equal(a, b)
}

func dedupe(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

// sameFlag compares two optional flags exactly: unset only equals unset.
func sameFlag(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
