/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package replicator

// State is the provisioning lifecycle state reported by the service.
// Absence of the resource is not a State; callers observe it as a
// not-found fault from describe.
type State string

const (
	StateCreating State = "CREATING"
	StateRunning  State = "RUNNING"
	StateUpdating State = "UPDATING"
	StateDeleting State = "DELETING"
	StateDegraded State = "DEGRADED"
	StateFailed   State = "FAILED"
)

// Transitioning reports whether the service is still working on the resource.
func (s State) Transitioning() bool {
	switch s {
	case StateCreating, StateUpdating, StateDeleting:
		return true
	default:
		return false
	}
}
