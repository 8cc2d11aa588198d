package local

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the SQLite inventory behind the local provider. All state
// transitions are recorded as (next_state, transition_at) pairs and applied
// lazily by promoteDue before any read, which is what makes a Refresh
// observe asynchronous progress.
type Store struct {
	db   *sql.DB
	path string

	// now is the clock used for transition scheduling and promotion.
	// Tests swap it for a fake.
	now func() time.Time
}

// OpenStore opens (or creates) the inventory database at path and runs
// pending migrations. An empty path opens an in-memory database.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	var dsn string
	inMemory := path == ""
	if inMemory {
		dsn = "file::memory:?cache=shared"
	} else {
		dsn = fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		// A shared-cache in-memory database disappears when its last
		// connection closes; pin a single connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrate runs the embedded schema migrations.
func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Tables carrying the (state, next_state, transition_at) lifecycle columns.
const (
	tableInstances = "instances"
	tableVolumes   = "volumes"
	tableSnapshots = "snapshots"
	tableImages    = "images"
)

// promoteDue applies every scheduled transition whose time has come. The
// table name is always one of the constants above, never caller input.
func (s *Store) promoteDue(ctx context.Context, table string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET state = next_state, next_state = NULL, transition_at = NULL, updated_at = ?
		WHERE next_state IS NOT NULL AND transition_at <= ?
	`, table)

	nowNanos := s.now().UnixNano()
	if _, err := s.db.ExecContext(ctx, query, nowNanos, nowNanos); err != nil {
		return fmt.Errorf("failed to promote %s transitions: %w", table, err)
	}
	return nil
}

// scheduleTransition records that the row should move to next at the given
// time. Returns sql.ErrNoRows if the row does not exist.
func (s *Store) scheduleTransition(ctx context.Context, table, id, next string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET next_state = ?, transition_at = ?, updated_at = ?
		WHERE id = ?
	`, table)

	res, err := s.db.ExecContext(ctx, query, next, at.UnixNano(), s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to schedule %s transition: %w", table, err)
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

// count returns the number of rows in the table.
func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
