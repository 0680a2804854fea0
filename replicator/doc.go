/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package replicator defines the resource model of a managed streaming-data
// replicator and the pure functions that compare two snapshots of it.
//
// # Model
//
// A Model describes one replicator: its identity (ARN and name), the pair of
// Kafka clusters it connects, the ReplicationInfo entries describing what flows
// between them, the execution role, tags, and the server-assigned version used
// for optimistic concurrency on updates.
//
// Models are built either from caller input or from a describe response, and
// are replaced wholesale by a freshly read snapshot. Use Clone before mutating
// a snapshot that may be shared.
//
// # Differencing
//
// ChangedReplicationInfos reports the desired ReplicationInfo entries whose
// topic or consumer-group configuration differs from the current entry with
// the same (source, target) pair:
//
//	changed := replicator.ChangedReplicationInfos(desired, current)
//	if len(changed) > 1 {
//	    // only one entry may change per update
//	}
//
// ChangedGroups runs every registered ChangeDetector and returns the names of
// the mutable attribute groups that differ. Adding a new mutable group means
// appending a detector to UpdateDetectors.
//
// # Tags
//
// DiffTags computes the tags to add and the keys to remove when moving from
// one tag mapping to another:
//
//	toAdd, toRemove := replicator.DiffTags(previous, desired)
package replicator
