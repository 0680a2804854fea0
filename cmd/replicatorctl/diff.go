/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"io"

	"chainguard.dev/mskreplicator/replicator"
	"github.com/spf13/cobra"
)

// plan is what an update from one snapshot to another would do.
type plan struct {
	ChangedGroups    []string                     `json:"changedGroups" yaml:"changedGroups"`
	ReplicationInfos []replicator.ReplicationInfo `json:"replicationInfos,omitempty" yaml:"replicationInfos,omitempty"`
	TagsToAdd        map[string]string            `json:"tagsToAdd,omitempty" yaml:"tagsToAdd,omitempty"`
	TagsToRemove     []string                     `json:"tagsToRemove,omitempty" yaml:"tagsToRemove,omitempty"`
	Supported        bool                         `json:"supported" yaml:"supported"`
}

func newPlan(previous, desired *replicator.Model, previousTags, desiredTags map[string]string) plan {
	p := plan{
		ChangedGroups:    replicator.ChangedGroups(desired, previous),
		ReplicationInfos: replicator.ChangedReplicationInfos(desired, previous),
	}
	p.TagsToAdd, p.TagsToRemove = replicator.DiffTags(
		replicator.MergeTags(previousTags, previous.Tags),
		replicator.MergeTags(desiredTags, desired.Tags),
	)
	p.Supported = len(p.ChangedGroups) <= 1 && len(p.ReplicationInfos) <= 1
	if p.ChangedGroups == nil {
		p.ChangedGroups = []string{}
	}
	return p
}

func newDiffCmd(flags *requestFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff PREVIOUS DESIRED",
		Short: "Show what updating from one snapshot to another would change",
		Long: `diff compares two replicator snapshots offline, without calling AWS. It
reports the changed attribute groups, the replication infos an update would
send, the tag changes, and whether an update could apply them in one request.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(flags.output); err != nil {
				return err
			}
			previous, err := loadModel(args[0])
			if err != nil {
				return err
			}
			desired, err := loadModel(args[1])
			if err != nil {
				return err
			}
			return writePlan(cmd.OutOrStdout(), flags.output, newPlan(previous, desired, flags.previousTags, flags.desiredTags))
		},
	}
	cmd.Flags().StringToStringVar(&flags.previousTags, "previous-tags", nil, "tags previously applied by the host")
	cmd.Flags().StringToStringVar(&flags.desiredTags, "desired-tags", nil, "tags applied by the host on top of the model's tags")
	return cmd
}

func writePlan(w io.Writer, format string, p plan) error {
	return encode(w, format, p)
}
