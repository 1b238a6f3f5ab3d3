package records

import (
	"context"
	"database/sql"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when no record exists for the device.
// A missing record is a valid first-visit state, not a failure.
var ErrNotFound = errors.New("record not found")

// Store is a networked record store keyed by device ID.
type Store interface {
	// Get returns the record for deviceID, or ErrNotFound.
	Get(ctx context.Context, deviceID string) (*Record, error)

	// Upsert creates the record for r.DeviceID or replaces it in place.
	Upsert(ctx context.Context, r *Record) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// IsNotFound reports whether err means "no record for this device".
// It also recognises the raw redis.Nil and sql.ErrNoRows sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, redis.Nil) || errors.Is(err, sql.ErrNoRows)
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
