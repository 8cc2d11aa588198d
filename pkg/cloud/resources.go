package cloud

import "context"

// StatefulResource is the capability the state waiter operates on: an
// identity, an observable state token, and a way to re-synchronize that
// token from the backend. The core never constructs these; providers do.
type StatefulResource interface {
	// ID returns the provider-assigned identifier of the resource.
	ID() string

	// State returns the last synchronized state token. It performs no
	// backend call.
	State() State

	// Refresh re-reads the resource from the backend and updates the value
	// returned by State. Backend errors are returned verbatim.
	Refresh(ctx context.Context) error
}

// Instance is a running or provisioning virtual machine.
type Instance interface {
	StatefulResource

	// Name returns the human-assigned name of the instance.
	Name() string

	// ImageID returns the identifier of the image the instance booted from.
	ImageID() string

	// PublicIPs returns the public addresses assigned to the instance.
	PublicIPs() []string

	// PrivateIPs returns the private addresses assigned to the instance.
	PrivateIPs() []string

	// Terminate requests deletion of the instance. The instance transitions
	// asynchronously; use WaitFor to observe the outcome.
	Terminate(ctx context.Context) error
}

// Volume is a block storage device.
type Volume interface {
	StatefulResource

	// Name returns the human-assigned name of the volume.
	Name() string

	// SizeGB returns the capacity of the volume in gigabytes.
	SizeGB() int

	// Attach connects the volume to an instance at the given device path.
	Attach(ctx context.Context, instanceID, device string) error

	// Detach disconnects the volume from its instance.
	Detach(ctx context.Context) error

	// Delete requests deletion of the volume.
	Delete(ctx context.Context) error
}

// Snapshot is a point-in-time copy of a volume.
type Snapshot interface {
	StatefulResource

	// Name returns the human-assigned name of the snapshot.
	Name() string

	// VolumeID returns the identifier of the source volume.
	VolumeID() string

	// Delete requests deletion of the snapshot.
	Delete(ctx context.Context) error
}

// MachineImage is a bootable image from which instances are launched.
type MachineImage interface {
	StatefulResource

	// Name returns the human-assigned name of the image.
	Name() string

	// Description returns the free-form description of the image.
	Description() string

	// Delete requests deletion of the image.
	Delete(ctx context.Context) error
}

// KeyPair is a named SSH key pair. Key pairs have no lifecycle state; they
// exist or they don't.
type KeyPair interface {
	// ID returns the identifier of the key pair.
	ID() string

	// Name returns the name of the key pair.
	Name() string

	// Delete removes the key pair from the backend.
	Delete(ctx context.Context) error
}

// Comparison keys. Two resources of the same kind are considered equal when
// their keys are equal. Each key is the declared tuple of identity plus the
// fields most likely to diverge between two views of the same backend
// object; keys are comparable structs and carry no behavior.

// InstanceKey is the comparison key for instances.
type InstanceKey struct {
	Provider string
	ID       string
	State    State
	Name     string
	ImageID  string
}

// VolumeKey is the comparison key for volumes.
type VolumeKey struct {
	Provider string
	ID       string
	State    State
	Name     string
}

// SnapshotKey is the comparison key for snapshots.
type SnapshotKey struct {
	Provider string
	ID       string
	State    State
	Name     string
}

// MachineImageKey is the comparison key for machine images.
type MachineImageKey struct {
	Provider    string
	ID          string
	State       State
	Name        string
	Description string
}

// InstanceKeyOf builds the comparison key for an instance owned by the
// named provider.
func InstanceKeyOf(provider string, i Instance) InstanceKey {
	return InstanceKey{
		Provider: provider,
		ID:       i.ID(),
		State:    i.State(),
		Name:     i.Name(),
		ImageID:  i.ImageID(),
	}
}

// VolumeKeyOf builds the comparison key for a volume owned by the named
// provider.
func VolumeKeyOf(provider string, v Volume) VolumeKey {
	return VolumeKey{Provider: provider, ID: v.ID(), State: v.State(), Name: v.Name()}
}

// SnapshotKeyOf builds the comparison key for a snapshot owned by the named
// provider.
func SnapshotKeyOf(provider string, s Snapshot) SnapshotKey {
	return SnapshotKey{Provider: provider, ID: s.ID(), State: s.State(), Name: s.Name()}
}

// MachineImageKeyOf builds the comparison key for an image owned by the
// named provider.
func MachineImageKeyOf(provider string, m MachineImage) MachineImageKey {
	return MachineImageKey{
		Provider:    provider,
		ID:          m.ID(),
		State:       m.State(),
		Name:        m.Name(),
		Description: m.Description(),
	}
}
