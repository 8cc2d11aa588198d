package local

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Row types mirror the table columns the services read back. The scheduled
// transition columns are insert-only; promoteDue folds them into state
// before any read runs, so no query selects them.

type instanceRow struct {
	ID           string
	Name         string
	ImageID      string
	State        string
	NextState    sql.NullString
	TransitionAt sql.NullInt64
	PublicIPs    string
	PrivateIPs   string
}

type volumeRow struct {
	ID           string
	Name         string
	SizeGB       int
	State        string
	NextState    sql.NullString
	TransitionAt sql.NullInt64
	InstanceID   sql.NullString
	Device       sql.NullString
}

type snapshotRow struct {
	ID           string
	Name         string
	VolumeID     string
	SizeGB       int
	State        string
	NextState    sql.NullString
	TransitionAt sql.NullInt64
}

// nullState and nullTime build the insert-only transition columns.

func nullState(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

type imageRow struct {
	ID          string
	Name        string
	Description string
	State       string
}

type keyPairRow struct {
	ID   string
	Name string
}

// joinIPs and splitIPs pack address lists into a single text column.

func joinIPs(ips []string) string {
	return strings.Join(ips, ",")
}

func splitIPs(packed string) []string {
	if packed == "" {
		return nil
	}
	return strings.Split(packed, ",")
}

// Instances

// createInstance inserts the instance and its launch volumes in one
// transaction, so a failed write leaves no half-initialized inventory.
func (s *Store) createInstance(ctx context.Context, row instanceRow, vols []volumeRow) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	nowNanos := s.now().UnixNano()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO instances (id, name, image_id, state, next_state, transition_at, public_ips, private_ips, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.Name, row.ImageID, row.State, row.NextState, row.TransitionAt,
		row.PublicIPs, row.PrivateIPs, nowNanos, nowNanos)
	if err != nil {
		return fmt.Errorf("failed to insert instance: %w", err)
	}

	for _, vol := range vols {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO volumes (id, name, size_gb, state, next_state, transition_at, instance_id, device, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, vol.ID, vol.Name, vol.SizeGB, vol.State, vol.NextState, vol.TransitionAt,
			vol.InstanceID, vol.Device, nowNanos, nowNanos)
		if err != nil {
			return fmt.Errorf("failed to insert launch volume: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit instance creation: %w", err)
	}
	return nil
}

func (s *Store) getInstance(ctx context.Context, id string) (*instanceRow, error) {
	var row instanceRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, image_id, state, public_ips, private_ips
		FROM instances WHERE id = ?
	`, id).Scan(&row.ID, &row.Name, &row.ImageID, &row.State, &row.PublicIPs, &row.PrivateIPs)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) listInstances(ctx context.Context, afterID string, limit int) ([]instanceRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, image_id, state, public_ips, private_ips
		FROM instances WHERE id > ? ORDER BY id LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	defer rows.Close()

	var result []instanceRow
	for rows.Next() {
		var row instanceRow
		if err := rows.Scan(&row.ID, &row.Name, &row.ImageID, &row.State, &row.PublicIPs, &row.PrivateIPs); err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Volumes

func (s *Store) insertVolume(ctx context.Context, row volumeRow) error {
	nowNanos := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO volumes (id, name, size_gb, state, next_state, transition_at, instance_id, device, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.Name, row.SizeGB, row.State, row.NextState, row.TransitionAt,
		row.InstanceID, row.Device, nowNanos, nowNanos)
	if err != nil {
		return fmt.Errorf("failed to insert volume: %w", err)
	}
	return nil
}

func (s *Store) getVolume(ctx context.Context, id string) (*volumeRow, error) {
	var row volumeRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, size_gb, state, instance_id, device
		FROM volumes WHERE id = ?
	`, id).Scan(&row.ID, &row.Name, &row.SizeGB, &row.State, &row.InstanceID, &row.Device)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) listVolumes(ctx context.Context, afterID string, limit int) ([]volumeRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, size_gb, state, instance_id, device
		FROM volumes WHERE id > ? ORDER BY id LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	defer rows.Close()

	var result []volumeRow
	for rows.Next() {
		var row volumeRow
		if err := rows.Scan(&row.ID, &row.Name, &row.SizeGB, &row.State, &row.InstanceID, &row.Device); err != nil {
			return nil, fmt.Errorf("failed to scan volume: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// attachVolume marks the volume in use by the instance. It only succeeds
// when the volume is available; anything else returns sql.ErrNoRows.
func (s *Store) attachVolume(ctx context.Context, id, instanceID, device string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE volumes
		SET state = 'in_use', instance_id = ?, device = ?, updated_at = ?
		WHERE id = ? AND state = 'available'
	`, instanceID, device, s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to attach volume: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// detachVolume releases the volume back to available. It only succeeds when
// the volume is in use; anything else returns sql.ErrNoRows.
func (s *Store) detachVolume(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE volumes
		SET state = 'available', instance_id = NULL, device = NULL, updated_at = ?
		WHERE id = ? AND state = 'in_use'
	`, s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to detach volume: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Snapshots

func (s *Store) insertSnapshot(ctx context.Context, row snapshotRow) error {
	nowNanos := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, volume_id, size_gb, state, next_state, transition_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.Name, row.VolumeID, row.SizeGB, row.State, row.NextState, row.TransitionAt,
		nowNanos, nowNanos)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (s *Store) getSnapshot(ctx context.Context, id string) (*snapshotRow, error) {
	var row snapshotRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, volume_id, size_gb, state
		FROM snapshots WHERE id = ?
	`, id).Scan(&row.ID, &row.Name, &row.VolumeID, &row.SizeGB, &row.State)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) listSnapshots(ctx context.Context, afterID string, limit int) ([]snapshotRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, volume_id, size_gb, state
		FROM snapshots WHERE id > ? ORDER BY id LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var result []snapshotRow
	for rows.Next() {
		var row snapshotRow
		if err := rows.Scan(&row.ID, &row.Name, &row.VolumeID, &row.SizeGB, &row.State); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) deleteSnapshot(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Images

func (s *Store) insertImage(ctx context.Context, row imageRow) error {
	nowNanos := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO images (id, name, description, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, row.ID, row.Name, row.Description, row.State, nowNanos, nowNanos)
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

func (s *Store) getImage(ctx context.Context, id string) (*imageRow, error) {
	var row imageRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, state
		FROM images WHERE id = ?
	`, id).Scan(&row.ID, &row.Name, &row.Description, &row.State)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) listImages(ctx context.Context, afterID string, limit int) ([]imageRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, state
		FROM images WHERE id > ? ORDER BY id LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var result []imageRow
	for rows.Next() {
		var row imageRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.State); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) deleteImage(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM images WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// Key pairs

func (s *Store) insertKeyPair(ctx context.Context, row keyPairRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO key_pairs (id, name, created_at) VALUES (?, ?, ?)
	`, row.ID, row.Name, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert key pair: %w", err)
	}
	return nil
}

func (s *Store) getKeyPairByName(ctx context.Context, name string) (*keyPairRow, error) {
	var row keyPairRow
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM key_pairs WHERE name = ?
	`, name).Scan(&row.ID, &row.Name)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) listKeyPairs(ctx context.Context, afterID string, limit int) ([]keyPairRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM key_pairs WHERE id > ? ORDER BY id LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list key pairs: %w", err)
	}
	defer rows.Close()

	var result []keyPairRow
	for rows.Next() {
		var row keyPairRow
		if err := rows.Scan(&row.ID, &row.Name); err != nil {
			return nil, fmt.Errorf("failed to scan key pair: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *Store) deleteKeyPairByName(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM key_pairs WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to delete key pair: %w", err)
	}
	return nil
}
