package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/skybridge/skybridge/pkg/cloud"
	"github.com/skybridge/skybridge/pkg/telemetry"
)

// instanceService implements cloud.InstanceService on the inventory store.
type instanceService struct{ p *Provider }

// ListPage implements cloud.PageSource[cloud.Instance].
func (s *instanceService) ListPage(ctx context.Context, marker string) (*cloud.ResultPage[cloud.Instance], error) {
	if err := s.p.store.promoteDue(ctx, tableInstances); err != nil {
		return nil, err
	}

	rows, err := s.p.store.listInstances(ctx, marker, s.p.limit+1)
	if err != nil {
		return nil, err
	}
	truncated := len(rows) > s.p.limit
	if truncated {
		rows = rows[:s.p.limit]
	}

	total, err := s.p.store.count(ctx, tableInstances)
	if err != nil {
		return nil, err
	}

	page := &cloud.ResultPage[cloud.Instance]{
		Data:          make([]cloud.Instance, 0, len(rows)),
		IsTruncated:   truncated,
		SupportsTotal: true,
		Total:         total,
	}
	for _, row := range rows {
		page.Data = append(page.Data, newInstance(s.p, &row))
	}
	if truncated {
		page.Marker = rows[len(rows)-1].ID
	}
	s.p.metrics.RecordPageFetched(Name, "instances", len(page.Data))
	return page, nil
}

// Get implements cloud.InstanceService.
func (s *instanceService) Get(ctx context.Context, id string) (cloud.Instance, error) {
	if err := s.p.store.promoteDue(ctx, tableInstances); err != nil {
		return nil, err
	}
	row, err := s.p.store.getInstance(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &cloud.NotFoundError{Kind: "instance", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return newInstance(s.p, row), nil
}

// Create implements cloud.InstanceService. The instance starts in the
// pending state and is promoted to running after the boot delay. Each
// volume-backed block device in the launch config materializes as an
// attached volume; ephemeral devices leave no inventory behind.
func (s *instanceService) Create(ctx context.Context, name, imageID string, cfg *cloud.LaunchConfig) (cloud.Instance, error) {
	timer := telemetry.NewTimer()

	if _, err := s.p.store.getImage(ctx, imageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.p.metrics.RecordProviderError(Name, "instance_create")
			return nil, &cloud.NotFoundError{Kind: "machine image", ID: imageID}
		}
		return nil, err
	}

	// One private address per requested network interface, at least one.
	nics := 1
	if cfg != nil && len(cfg.NetworkInterfaces) > nics {
		nics = len(cfg.NetworkInterfaces)
	}
	privateIPs := make([]string, 0, nics)
	for i := 0; i < nics; i++ {
		privateIPs = append(privateIPs, s.p.nextPrivateIP())
	}

	row := instanceRow{
		ID:           "i-" + uuid.NewString(),
		Name:         name,
		ImageID:      imageID,
		State:        string(cloud.InstanceStatePending),
		NextState:    nullState(string(cloud.InstanceStateRunning)),
		TransitionAt: nullTime(s.p.transitionAt()),
		PublicIPs:    joinIPs([]string{s.p.nextPublicIP()}),
		PrivateIPs:   joinIPs(privateIPs),
	}

	// Instance row and launch volumes land in one transaction so a failed
	// write never leaves a half-initialized instance behind.
	if err := s.p.store.createInstance(ctx, row, s.buildLaunchVolumes(row.ID, cfg)); err != nil {
		s.p.metrics.RecordProviderError(Name, "instance_create")
		return nil, err
	}

	s.p.log.WithResourceID(row.ID).WithField("name", name).Info("instance created")
	s.p.metrics.RecordProviderCall(Name, "instance_create", timer.Duration())
	return newInstance(s.p, &row), nil
}

// buildLaunchVolumes turns the volume-backed block devices of a launch
// config into volume rows already attached to the instance.
func (s *instanceService) buildLaunchVolumes(instanceID string, cfg *cloud.LaunchConfig) []volumeRow {
	if cfg == nil {
		return nil
	}
	var vols []volumeRow
	for _, spec := range cfg.BlockDevices {
		if !spec.IsVolume {
			continue
		}
		size := spec.SizeGB
		if size == 0 {
			if sized, ok := spec.Source.(interface{ SizeGB() int }); ok {
				size = sized.SizeGB()
			}
		}
		if size == 0 {
			size = 8
		}

		vols = append(vols, volumeRow{
			ID:         "vol-" + uuid.NewString(),
			Name:       fmt.Sprintf("%s-disk-%d", instanceID, len(vols)),
			SizeGB:     size,
			State:      string(cloud.VolumeStateInUse),
			InstanceID: sql.NullString{String: instanceID, Valid: true},
			Device:     sql.NullString{String: fmt.Sprintf("/dev/sd%c", 'a'+len(vols)), Valid: true},
		})
	}
	return vols
}

// instance implements cloud.Instance.
type instance struct {
	p          *Provider
	id         string
	name       string
	imageID    string
	state      cloud.State
	publicIPs  []string
	privateIPs []string
}

func newInstance(p *Provider, row *instanceRow) *instance {
	return &instance{
		p:          p,
		id:         row.ID,
		name:       row.Name,
		imageID:    row.ImageID,
		state:      cloud.State(row.State),
		publicIPs:  splitIPs(row.PublicIPs),
		privateIPs: splitIPs(row.PrivateIPs),
	}
}

func (i *instance) ID() string           { return i.id }
func (i *instance) Name() string         { return i.name }
func (i *instance) ImageID() string      { return i.imageID }
func (i *instance) State() cloud.State   { return i.state }
func (i *instance) PublicIPs() []string  { return i.publicIPs }
func (i *instance) PrivateIPs() []string { return i.privateIPs }

// Refresh implements cloud.StatefulResource.
func (i *instance) Refresh(ctx context.Context) error {
	if err := i.p.store.promoteDue(ctx, tableInstances); err != nil {
		return err
	}
	row, err := i.p.store.getInstance(ctx, i.id)
	if errors.Is(err, sql.ErrNoRows) {
		return &cloud.NotFoundError{Kind: "instance", ID: i.id}
	}
	if err != nil {
		return err
	}
	i.name = row.Name
	i.state = cloud.State(row.State)
	i.publicIPs = splitIPs(row.PublicIPs)
	i.privateIPs = splitIPs(row.PrivateIPs)
	return nil
}

// Terminate implements cloud.Instance. The transition to terminated is
// asynchronous like the rest of the lifecycle.
func (i *instance) Terminate(ctx context.Context) error {
	err := i.p.store.scheduleTransition(ctx, tableInstances, i.id,
		string(cloud.InstanceStateTerminated), i.p.transitionAt())
	if errors.Is(err, sql.ErrNoRows) {
		return &cloud.NotFoundError{Kind: "instance", ID: i.id}
	}
	if err != nil {
		return err
	}
	i.p.log.WithResourceID(i.id).Info("instance termination requested")
	return nil
}

// imageService implements cloud.ImageService.
type imageService struct{ p *Provider }

// ListPage implements cloud.PageSource[cloud.MachineImage].
func (s *imageService) ListPage(ctx context.Context, marker string) (*cloud.ResultPage[cloud.MachineImage], error) {
	if err := s.p.store.promoteDue(ctx, tableImages); err != nil {
		return nil, err
	}

	rows, err := s.p.store.listImages(ctx, marker, s.p.limit+1)
	if err != nil {
		return nil, err
	}
	truncated := len(rows) > s.p.limit
	if truncated {
		rows = rows[:s.p.limit]
	}

	total, err := s.p.store.count(ctx, tableImages)
	if err != nil {
		return nil, err
	}

	page := &cloud.ResultPage[cloud.MachineImage]{
		Data:          make([]cloud.MachineImage, 0, len(rows)),
		IsTruncated:   truncated,
		SupportsTotal: true,
		Total:         total,
	}
	for _, row := range rows {
		page.Data = append(page.Data, newImage(s.p, &row))
	}
	if truncated {
		page.Marker = rows[len(rows)-1].ID
	}
	s.p.metrics.RecordPageFetched(Name, "images", len(page.Data))
	return page, nil
}

// Get implements cloud.ImageService.
func (s *imageService) Get(ctx context.Context, id string) (cloud.MachineImage, error) {
	if err := s.p.store.promoteDue(ctx, tableImages); err != nil {
		return nil, err
	}
	row, err := s.p.store.getImage(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &cloud.NotFoundError{Kind: "machine image", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return newImage(s.p, row), nil
}

// image implements cloud.MachineImage.
type image struct {
	p           *Provider
	id          string
	name        string
	description string
	state       cloud.State
}

func newImage(p *Provider, row *imageRow) *image {
	return &image{
		p:           p,
		id:          row.ID,
		name:        row.Name,
		description: row.Description,
		state:       cloud.State(row.State),
	}
}

func (m *image) ID() string          { return m.id }
func (m *image) Name() string        { return m.name }
func (m *image) Description() string { return m.description }
func (m *image) State() cloud.State  { return m.state }

// Refresh implements cloud.StatefulResource.
func (m *image) Refresh(ctx context.Context) error {
	if err := m.p.store.promoteDue(ctx, tableImages); err != nil {
		return err
	}
	row, err := m.p.store.getImage(ctx, m.id)
	if errors.Is(err, sql.ErrNoRows) {
		return &cloud.NotFoundError{Kind: "machine image", ID: m.id}
	}
	if err != nil {
		return err
	}
	m.name = row.Name
	m.description = row.Description
	m.state = cloud.State(row.State)
	return nil
}

// Delete implements cloud.MachineImage. Images are removed immediately.
func (m *image) Delete(ctx context.Context) error {
	if err := m.p.store.deleteImage(ctx, m.id); err != nil {
		return err
	}
	m.p.log.WithResourceID(m.id).Info("image deleted")
	return nil
}
