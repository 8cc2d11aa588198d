package cloud

import "context"

// Provider is the root capability a cloud backend exposes. Construction,
// credentials, and transport are the backend's concern; the core only
// navigates from a Provider to its services.
type Provider interface {
	// Name returns the registry name of the provider (e.g. "local").
	Name() string

	// Compute returns the compute service for this provider.
	Compute() ComputeService

	// BlockStore returns the block storage service for this provider.
	BlockStore() BlockStoreService

	// Security returns the security service for this provider.
	Security() SecurityService

	// Close releases any resources held by the provider.
	Close() error
}

// ComputeService groups the compute-side services.
type ComputeService interface {
	// Instances returns the instance service.
	Instances() InstanceService

	// Images returns the machine image service.
	Images() ImageService
}

// BlockStoreService groups the block-storage services.
type BlockStoreService interface {
	// Volumes returns the volume service.
	Volumes() VolumeService

	// Snapshots returns the snapshot service.
	Snapshots() SnapshotService
}

// SecurityService groups the credential-management services.
type SecurityService interface {
	// KeyPairs returns the key pair service.
	KeyPairs() KeyPairService
}

// InstanceService manages instances. Its ListPage method makes it a
// PageSource[Instance], so the whole inventory can be consumed through an
// Iterator.
type InstanceService interface {
	PageSource[Instance]

	// Get retrieves a single instance by ID.
	Get(ctx context.Context, id string) (Instance, error)

	// Create launches a new instance from the image, applying the
	// accumulated block-device and network-interface lists of the launch
	// config (read-only; a nil config means provider defaults).
	Create(ctx context.Context, name, imageID string, cfg *LaunchConfig) (Instance, error)
}

// VolumeService manages block storage volumes.
type VolumeService interface {
	PageSource[Volume]

	// Get retrieves a single volume by ID.
	Get(ctx context.Context, id string) (Volume, error)

	// Create provisions a new volume of the given size in gigabytes.
	Create(ctx context.Context, name string, sizeGB int) (Volume, error)
}

// SnapshotService manages volume snapshots.
type SnapshotService interface {
	PageSource[Snapshot]

	// Get retrieves a single snapshot by ID.
	Get(ctx context.Context, id string) (Snapshot, error)

	// Create captures a snapshot of the given volume.
	Create(ctx context.Context, name, volumeID string) (Snapshot, error)
}

// ImageService manages machine images.
type ImageService interface {
	PageSource[MachineImage]

	// Get retrieves a single image by ID.
	Get(ctx context.Context, id string) (MachineImage, error)
}

// KeyPairService manages SSH key pairs.
type KeyPairService interface {
	PageSource[KeyPair]

	// Get retrieves a single key pair by name.
	Get(ctx context.Context, name string) (KeyPair, error)

	// Create registers a new key pair under the given name.
	Create(ctx context.Context, name string) (KeyPair, error)

	// Delete removes a key pair. Deleting a key pair that does not exist is
	// not an error.
	Delete(ctx context.Context, name string) error
}
