package cloud

// BlockDeviceSpec describes one block device attachment in a launch
// configuration. A spec is either ephemeral (instance-local scratch
// storage) or volume-backed.
type BlockDeviceSpec struct {
	// IsVolume distinguishes volume-backed specs from ephemeral ones.
	IsVolume bool

	// Source optionally names what the volume is created from: a Snapshot,
	// Volume, or MachineImage. The core records the reference but never
	// dereferences it. Nil means a blank volume.
	Source any

	// IsRoot marks this device as the instance's boot volume. At most one
	// spec in a launch configuration may set it.
	IsRoot bool

	// SizeGB is the volume size in gigabytes. Zero means unspecified.
	SizeGB int

	// DeleteOnTerminate requests that the volume be deleted with the
	// instance. Passed through to the provider uninterpreted.
	DeleteOnTerminate bool
}

// VolumeDevice holds the arguments for LaunchConfig.AddVolumeDevice.
type VolumeDevice struct {
	// Source is an optional Snapshot, Volume, or MachineImage to create the
	// volume from.
	Source any

	// IsRoot marks the device as the boot volume.
	IsRoot bool

	// SizeGB is the requested size in gigabytes; required when Source is
	// nil.
	SizeGB int

	// DeleteOnTerminate requests deletion of the volume with the instance.
	DeleteOnTerminate bool
}

// LaunchConfig accumulates the block-device and network-interface
// specifications for an instance launch. It is built empty, mutated only
// through its Add methods, and consumed read-only by the provisioning call.
// Insertion order is significant: it determines device attachment order.
// There are no delete or reorder operations, and a LaunchConfig is not safe
// for concurrent mutation.
type LaunchConfig struct {
	// BlockDevices is the ordered list of device specs.
	BlockDevices []BlockDeviceSpec

	// NetworkInterfaces is the ordered list of opaque network identifiers.
	NetworkInterfaces []string
}

// NewLaunchConfig returns an empty launch configuration.
func NewLaunchConfig() *LaunchConfig {
	return &LaunchConfig{}
}

// AddEphemeralDevice appends an ephemeral block device. Ephemeral devices
// carry no options and never fail validation.
func (lc *LaunchConfig) AddEphemeralDevice() {
	lc.BlockDevices = append(lc.BlockDevices, BlockDeviceSpec{})
}

// AddVolumeDevice validates and appends a volume-backed block device. Each
// call is validated independently against the current device list:
//
//	(a) a blank volume (no source) must specify a size;
//	(b) a source, when present, must be a Snapshot, Volume, or MachineImage;
//	(c) a size, when present, must be greater than zero;
//	(d) at most one device in the list may be marked as root.
//
// A violation returns an InvalidConfigError and leaves the list unchanged.
func (lc *LaunchConfig) AddVolumeDevice(dev VolumeDevice) error {
	if dev.Source == nil && dev.SizeGB == 0 {
		return &InvalidConfigError{Message: "a size must be specified for a blank new volume"}
	}
	if dev.Source != nil {
		switch dev.Source.(type) {
		case Snapshot, Volume, MachineImage:
		default:
			return &InvalidConfigError{Message: "source must be a Snapshot, Volume, MachineImage or nil"}
		}
	}
	if dev.SizeGB < 0 {
		return &InvalidConfigError{Message: "the size must be unset or a number greater than 0"}
	}
	if dev.IsRoot {
		for _, bd := range lc.BlockDevices {
			if bd.IsRoot {
				return &InvalidConfigError{Message: "an existing block device has already been marked as root; there can only be one root device"}
			}
		}
	}
	lc.BlockDevices = append(lc.BlockDevices, BlockDeviceSpec{
		IsVolume:          true,
		Source:            dev.Source,
		IsRoot:            dev.IsRoot,
		SizeGB:            dev.SizeGB,
		DeleteOnTerminate: dev.DeleteOnTerminate,
	})
	return nil
}

// AddNetworkInterface appends an opaque network identifier. No validation
// or deduplication is performed; network identifiers are checked by the
// backend at provisioning time.
func (lc *LaunchConfig) AddNetworkInterface(netID string) {
	lc.NetworkInterfaces = append(lc.NetworkInterfaces, netID)
}
