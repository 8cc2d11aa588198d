package cloud

import "fmt"

// State is an opaque resource state token. Providers map their native
// status strings onto the constants below; the core only ever compares
// states for equality.
type State string

// In reports whether the state is a member of the given set.
func (s State) In(set []State) bool {
	for _, m := range set {
		if s == m {
			return true
		}
	}
	return false
}

// Instance states.
const (
	// InstanceStateUnknown indicates the instance state could not be mapped.
	InstanceStateUnknown State = "unknown"

	// InstanceStatePending indicates the instance is being provisioned.
	InstanceStatePending State = "pending"

	// InstanceStateConfiguring indicates the instance is being configured.
	InstanceStateConfiguring State = "configuring"

	// InstanceStateRunning indicates the instance is up and reachable.
	InstanceStateRunning State = "running"

	// InstanceStateRebooting indicates the instance is restarting.
	InstanceStateRebooting State = "rebooting"

	// InstanceStateStopped indicates the instance is stopped but not deleted.
	InstanceStateStopped State = "stopped"

	// InstanceStateTerminated indicates the instance has been deleted.
	InstanceStateTerminated State = "terminated"

	// InstanceStateError indicates the instance is in an unrecoverable state.
	InstanceStateError State = "error"
)

// Volume states.
const (
	// VolumeStateUnknown indicates the volume state could not be mapped.
	VolumeStateUnknown State = "unknown"

	// VolumeStateCreating indicates the volume is being provisioned.
	VolumeStateCreating State = "creating"

	// VolumeStateConfiguring indicates the volume is being configured.
	VolumeStateConfiguring State = "configuring"

	// VolumeStateAvailable indicates the volume is ready to be attached.
	VolumeStateAvailable State = "available"

	// VolumeStateInUse indicates the volume is attached to an instance.
	VolumeStateInUse State = "in_use"

	// VolumeStateDeleted indicates the volume has been deleted.
	VolumeStateDeleted State = "deleted"

	// VolumeStateError indicates the volume is in an unrecoverable state.
	VolumeStateError State = "error"
)

// Snapshot states.
const (
	// SnapshotStateUnknown indicates the snapshot state could not be mapped.
	SnapshotStateUnknown State = "unknown"

	// SnapshotStatePending indicates the snapshot is being captured.
	SnapshotStatePending State = "pending"

	// SnapshotStateConfiguring indicates the snapshot is being configured.
	SnapshotStateConfiguring State = "configuring"

	// SnapshotStateAvailable indicates the snapshot is ready for use.
	SnapshotStateAvailable State = "available"

	// SnapshotStateError indicates the snapshot is in an unrecoverable state.
	SnapshotStateError State = "error"
)

// Machine image states.
const (
	// MachineImageStateUnknown indicates the image state could not be mapped.
	MachineImageStateUnknown State = "unknown"

	// MachineImageStatePending indicates the image is being built.
	MachineImageStatePending State = "pending"

	// MachineImageStateAvailable indicates the image can launch instances.
	MachineImageStateAvailable State = "available"

	// MachineImageStateError indicates the image is in an unrecoverable state.
	MachineImageStateError State = "error"
)

// Declared ready and terminal state sets per resource kind. These are plain
// data: the per-kind WaitTill*Ready helpers pass them to WaitFor unchanged,
// and providers are free to reuse them.
var (
	// InstanceReadyStates are the states that complete an instance wait.
	InstanceReadyStates = []State{InstanceStateRunning}

	// InstanceTerminalStates are the dead-end states for an instance wait.
	InstanceTerminalStates = []State{InstanceStateTerminated, InstanceStateError}

	// VolumeReadyStates are the states that complete a volume wait.
	VolumeReadyStates = []State{VolumeStateAvailable}

	// VolumeTerminalStates are the dead-end states for a volume wait.
	VolumeTerminalStates = []State{VolumeStateError, VolumeStateDeleted}

	// SnapshotReadyStates are the states that complete a snapshot wait.
	SnapshotReadyStates = []State{SnapshotStateAvailable}

	// SnapshotTerminalStates are the dead-end states for a snapshot wait.
	SnapshotTerminalStates = []State{SnapshotStateError}

	// MachineImageReadyStates are the states that complete an image wait.
	MachineImageReadyStates = []State{MachineImageStateAvailable}

	// MachineImageTerminalStates are the dead-end states for an image wait.
	MachineImageTerminalStates = []State{MachineImageStateError}
)

// ValidInstanceState checks that the state is a known instance state.
func ValidInstanceState(s State) error {
	switch s {
	case InstanceStateUnknown, InstanceStatePending, InstanceStateConfiguring,
		InstanceStateRunning, InstanceStateRebooting, InstanceStateStopped,
		InstanceStateTerminated, InstanceStateError:
		return nil
	default:
		return fmt.Errorf("invalid instance state: %s", s)
	}
}

// ValidVolumeState checks that the state is a known volume state.
func ValidVolumeState(s State) error {
	switch s {
	case VolumeStateUnknown, VolumeStateCreating, VolumeStateConfiguring,
		VolumeStateAvailable, VolumeStateInUse, VolumeStateDeleted,
		VolumeStateError:
		return nil
	default:
		return fmt.Errorf("invalid volume state: %s", s)
	}
}

// ValidSnapshotState checks that the state is a known snapshot state.
func ValidSnapshotState(s State) error {
	switch s {
	case SnapshotStateUnknown, SnapshotStatePending, SnapshotStateConfiguring,
		SnapshotStateAvailable, SnapshotStateError:
		return nil
	default:
		return fmt.Errorf("invalid snapshot state: %s", s)
	}
}

// ValidMachineImageState checks that the state is a known image state.
func ValidMachineImageState(s State) error {
	switch s {
	case MachineImageStateUnknown, MachineImageStatePending,
		MachineImageStateAvailable, MachineImageStateError:
		return nil
	default:
		return fmt.Errorf("invalid machine image state: %s", s)
	}
}
