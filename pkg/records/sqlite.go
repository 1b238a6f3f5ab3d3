package records

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - hunt_progress table
const currentSchemaVersion = 1

// SQLiteStore keeps progress records in a SQLite database file.
// Uses WAL mode so several processes can share one file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates or opens the database at path and applies the schema.
// This function is idempotent - safe to call on an existing database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get retrieves the record for deviceID.
// Returns (nil, ErrNotFound) if the device has no record yet.
func (s *SQLiteStore) Get(ctx context.Context, deviceID string) (*Record, error) {
	var slugsJSON, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT completed_slugs, updated_at FROM hunt_progress WHERE device_id = ?`,
		deviceID,
	).Scan(&slugsJSON, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}

	slugs, err := decodeSlugs(slugsJSON)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("read progress: invalid updated_at %q: %w", updatedAt, err)
	}

	return &Record{
		DeviceID:       deviceID,
		CompletedSlugs: slugs,
		UpdatedAt:      ts,
	}, nil
}

// Upsert inserts the record or updates the existing row for its device ID.
// The device_id primary key guarantees at most one row per device.
func (s *SQLiteStore) Upsert(ctx context.Context, r *Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	slugs := r.CompletedSlugs
	if slugs == nil {
		slugs = []string{}
	}
	slugsJSON, err := json.Marshal(slugs)
	if err != nil {
		return fmt.Errorf("write progress: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO hunt_progress (device_id, completed_slugs, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			completed_slugs = excluded.completed_slugs,
			updated_at = excluded.updated_at
	`,
		r.DeviceID,
		string(slugsJSON),
		r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write progress: %w", err)
	}

	return nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hunt_progress`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count progress: %w", err)
	}
	return n, nil
}
