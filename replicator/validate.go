/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package replicator

import (
	"errors"
	"fmt"
)

// ValidationError is a local precondition failure detected before any
// remote call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("property validation failed: %s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ValidateIdentity checks that the model names an existing replicator.
func (m *Model) ValidateIdentity() error {
	if m == nil {
		return invalid("model", "is required")
	}
	if m.ReplicatorArn == "" {
		return invalid("replicatorArn", "is required")
	}
	return nil
}

// ValidateForCreate checks the fields the service requires to create a
// replicator. All violations are joined into one error.
func (m *Model) ValidateForCreate() error {
	if m == nil {
		return invalid("model", "is required")
	}
	var errs []error
	if m.ReplicatorName == "" {
		errs = append(errs, invalid("replicatorName", "is required"))
	}
	if m.ServiceExecutionRoleArn == "" {
		errs = append(errs, invalid("serviceExecutionRoleArn", "is required"))
	}
	if len(m.KafkaClusters) != 2 {
		errs = append(errs, invalid("kafkaClusters", fmt.Sprintf("must contain exactly 2 clusters, got %d", len(m.KafkaClusters))))
	}
	for i, kc := range m.KafkaClusters {
		if kc.AmazonMskCluster.MskClusterArn == "" {
			errs = append(errs, invalid(fmt.Sprintf("kafkaClusters[%d].amazonMskCluster.mskClusterArn", i), "is required"))
		}
		if len(kc.VpcConfig.SubnetIds) == 0 {
			errs = append(errs, invalid(fmt.Sprintf("kafkaClusters[%d].vpcConfig.subnetIds", i), "must not be empty"))
		}
	}
	if len(m.ReplicationInfoList) != 1 {
		errs = append(errs, invalid("replicationInfoList", fmt.Sprintf("must contain exactly 1 entry, got %d", len(m.ReplicationInfoList))))
	}
	for i, ri := range m.ReplicationInfoList {
		if ri.SourceKafkaClusterArn == "" || ri.TargetKafkaClusterArn == "" {
			errs = append(errs, invalid(fmt.Sprintf("replicationInfoList[%d]", i), "must name both source and target clusters"))
		}
	}
	return errors.Join(errs...)
}
