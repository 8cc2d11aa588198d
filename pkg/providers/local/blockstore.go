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

// volumeService implements cloud.VolumeService on the inventory store.
type volumeService struct{ p *Provider }

// ListPage implements cloud.PageSource[cloud.Volume].
func (s *volumeService) ListPage(ctx context.Context, marker string) (*cloud.ResultPage[cloud.Volume], error) {
	if err := s.p.store.promoteDue(ctx, tableVolumes); err != nil {
		return nil, err
	}

	rows, err := s.p.store.listVolumes(ctx, marker, s.p.limit+1)
	if err != nil {
		return nil, err
	}
	truncated := len(rows) > s.p.limit
	if truncated {
		rows = rows[:s.p.limit]
	}

	total, err := s.p.store.count(ctx, tableVolumes)
	if err != nil {
		return nil, err
	}

	page := &cloud.ResultPage[cloud.Volume]{
		Data:          make([]cloud.Volume, 0, len(rows)),
		IsTruncated:   truncated,
		SupportsTotal: true,
		Total:         total,
	}
	for _, row := range rows {
		page.Data = append(page.Data, newVolume(s.p, &row))
	}
	if truncated {
		page.Marker = rows[len(rows)-1].ID
	}
	s.p.metrics.RecordPageFetched(Name, "volumes", len(page.Data))
	return page, nil
}

// Get implements cloud.VolumeService.
func (s *volumeService) Get(ctx context.Context, id string) (cloud.Volume, error) {
	if err := s.p.store.promoteDue(ctx, tableVolumes); err != nil {
		return nil, err
	}
	row, err := s.p.store.getVolume(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &cloud.NotFoundError{Kind: "volume", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return newVolume(s.p, row), nil
}

// Create implements cloud.VolumeService. The volume starts in the creating
// state and is promoted to available after the boot delay.
func (s *volumeService) Create(ctx context.Context, name string, sizeGB int) (cloud.Volume, error) {
	timer := telemetry.NewTimer()

	if sizeGB <= 0 {
		s.p.metrics.RecordProviderError(Name, "volume_create")
		return nil, fmt.Errorf("volume size must be greater than zero, got %d", sizeGB)
	}

	row := volumeRow{
		ID:           "vol-" + uuid.NewString(),
		Name:         name,
		SizeGB:       sizeGB,
		State:        string(cloud.VolumeStateCreating),
		NextState:    nullState(string(cloud.VolumeStateAvailable)),
		TransitionAt: nullTime(s.p.transitionAt()),
	}
	if err := s.p.store.insertVolume(ctx, row); err != nil {
		s.p.metrics.RecordProviderError(Name, "volume_create")
		return nil, err
	}

	s.p.log.WithResourceID(row.ID).WithField("size_gb", sizeGB).Info("volume created")
	s.p.metrics.RecordProviderCall(Name, "volume_create", timer.Duration())
	return newVolume(s.p, &row), nil
}

// volume implements cloud.Volume.
type volume struct {
	p          *Provider
	id         string
	name       string
	sizeGB     int
	state      cloud.State
	instanceID string
	device     string
}

func newVolume(p *Provider, row *volumeRow) *volume {
	return &volume{
		p:          p,
		id:         row.ID,
		name:       row.Name,
		sizeGB:     row.SizeGB,
		state:      cloud.State(row.State),
		instanceID: row.InstanceID.String,
		device:     row.Device.String,
	}
}

func (v *volume) ID() string         { return v.id }
func (v *volume) Name() string       { return v.name }
func (v *volume) SizeGB() int        { return v.sizeGB }
func (v *volume) State() cloud.State { return v.state }

// Refresh implements cloud.StatefulResource.
func (v *volume) Refresh(ctx context.Context) error {
	if err := v.p.store.promoteDue(ctx, tableVolumes); err != nil {
		return err
	}
	row, err := v.p.store.getVolume(ctx, v.id)
	if errors.Is(err, sql.ErrNoRows) {
		return &cloud.NotFoundError{Kind: "volume", ID: v.id}
	}
	if err != nil {
		return err
	}
	v.name = row.Name
	v.sizeGB = row.SizeGB
	v.state = cloud.State(row.State)
	v.instanceID = row.InstanceID.String
	v.device = row.Device.String
	return nil
}

// Attach implements cloud.Volume. Only an available volume can be attached.
func (v *volume) Attach(ctx context.Context, instanceID, device string) error {
	if err := v.p.store.promoteDue(ctx, tableVolumes); err != nil {
		return err
	}
	err := v.p.store.attachVolume(ctx, v.id, instanceID, device)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("volume %s is not available for attachment", v.id)
	}
	if err != nil {
		return err
	}
	v.state = cloud.VolumeStateInUse
	v.instanceID = instanceID
	v.device = device
	v.p.log.WithResourceID(v.id).WithField("instance_id", instanceID).Info("volume attached")
	return nil
}

// Detach implements cloud.Volume. Only an attached volume can be detached.
func (v *volume) Detach(ctx context.Context) error {
	if err := v.p.store.promoteDue(ctx, tableVolumes); err != nil {
		return err
	}
	err := v.p.store.detachVolume(ctx, v.id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("volume %s is not attached", v.id)
	}
	if err != nil {
		return err
	}
	v.state = cloud.VolumeStateAvailable
	v.instanceID = ""
	v.device = ""
	v.p.log.WithResourceID(v.id).Info("volume detached")
	return nil
}

// Delete implements cloud.Volume. The transition to deleted is asynchronous.
func (v *volume) Delete(ctx context.Context) error {
	err := v.p.store.scheduleTransition(ctx, tableVolumes, v.id,
		string(cloud.VolumeStateDeleted), v.p.transitionAt())
	if errors.Is(err, sql.ErrNoRows) {
		return &cloud.NotFoundError{Kind: "volume", ID: v.id}
	}
	if err != nil {
		return err
	}
	v.p.log.WithResourceID(v.id).Info("volume deletion requested")
	return nil
}

// snapshotService implements cloud.SnapshotService on the inventory store.
type snapshotService struct{ p *Provider }

// ListPage implements cloud.PageSource[cloud.Snapshot].
func (s *snapshotService) ListPage(ctx context.Context, marker string) (*cloud.ResultPage[cloud.Snapshot], error) {
	if err := s.p.store.promoteDue(ctx, tableSnapshots); err != nil {
		return nil, err
	}

	rows, err := s.p.store.listSnapshots(ctx, marker, s.p.limit+1)
	if err != nil {
		return nil, err
	}
	truncated := len(rows) > s.p.limit
	if truncated {
		rows = rows[:s.p.limit]
	}

	total, err := s.p.store.count(ctx, tableSnapshots)
	if err != nil {
		return nil, err
	}

	page := &cloud.ResultPage[cloud.Snapshot]{
		Data:          make([]cloud.Snapshot, 0, len(rows)),
		IsTruncated:   truncated,
		SupportsTotal: true,
		Total:         total,
	}
	for _, row := range rows {
		page.Data = append(page.Data, newSnapshot(s.p, &row))
	}
	if truncated {
		page.Marker = rows[len(rows)-1].ID
	}
	s.p.metrics.RecordPageFetched(Name, "snapshots", len(page.Data))
	return page, nil
}

// Get implements cloud.SnapshotService.
func (s *snapshotService) Get(ctx context.Context, id string) (cloud.Snapshot, error) {
	if err := s.p.store.promoteDue(ctx, tableSnapshots); err != nil {
		return nil, err
	}
	row, err := s.p.store.getSnapshot(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &cloud.NotFoundError{Kind: "snapshot", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return newSnapshot(s.p, row), nil
}

// Create implements cloud.SnapshotService. The snapshot inherits the size of
// its source volume, starts pending, and is promoted to available after the
// boot delay.
func (s *snapshotService) Create(ctx context.Context, name, volumeID string) (cloud.Snapshot, error) {
	timer := telemetry.NewTimer()

	vol, err := s.p.store.getVolume(ctx, volumeID)
	if errors.Is(err, sql.ErrNoRows) {
		s.p.metrics.RecordProviderError(Name, "snapshot_create")
		return nil, &cloud.NotFoundError{Kind: "volume", ID: volumeID}
	}
	if err != nil {
		return nil, err
	}

	row := snapshotRow{
		ID:           "snap-" + uuid.NewString(),
		Name:         name,
		VolumeID:     volumeID,
		SizeGB:       vol.SizeGB,
		State:        string(cloud.SnapshotStatePending),
		NextState:    nullState(string(cloud.SnapshotStateAvailable)),
		TransitionAt: nullTime(s.p.transitionAt()),
	}
	if err := s.p.store.insertSnapshot(ctx, row); err != nil {
		s.p.metrics.RecordProviderError(Name, "snapshot_create")
		return nil, err
	}

	s.p.log.WithResourceID(row.ID).WithField("volume_id", volumeID).Info("snapshot created")
	s.p.metrics.RecordProviderCall(Name, "snapshot_create", timer.Duration())
	return newSnapshot(s.p, &row), nil
}

// snapshot implements cloud.Snapshot.
type snapshot struct {
	p        *Provider
	id       string
	name     string
	volumeID string
	state    cloud.State
}

func newSnapshot(p *Provider, row *snapshotRow) *snapshot {
	return &snapshot{
		p:        p,
		id:       row.ID,
		name:     row.Name,
		volumeID: row.VolumeID,
		state:    cloud.State(row.State),
	}
}

func (sn *snapshot) ID() string         { return sn.id }
func (sn *snapshot) Name() string       { return sn.name }
func (sn *snapshot) VolumeID() string   { return sn.volumeID }
func (sn *snapshot) State() cloud.State { return sn.state }

// Refresh implements cloud.StatefulResource.
func (sn *snapshot) Refresh(ctx context.Context) error {
	if err := sn.p.store.promoteDue(ctx, tableSnapshots); err != nil {
		return err
	}
	row, err := sn.p.store.getSnapshot(ctx, sn.id)
	if errors.Is(err, sql.ErrNoRows) {
		return &cloud.NotFoundError{Kind: "snapshot", ID: sn.id}
	}
	if err != nil {
		return err
	}
	sn.name = row.Name
	sn.state = cloud.State(row.State)
	return nil
}

// Delete implements cloud.Snapshot. Snapshots are removed immediately.
func (sn *snapshot) Delete(ctx context.Context) error {
	if err := sn.p.store.deleteSnapshot(ctx, sn.id); err != nil {
		return err
	}
	sn.p.log.WithResourceID(sn.id).Info("snapshot deleted")
	return nil
}
