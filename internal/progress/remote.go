package progress

import (
	"context"
	"time"

	"github.com/dyluth/hunt/internal/identity"
	"github.com/dyluth/hunt/pkg/records"
	"go.uber.org/zap"
)

const (
	defaultFetchError    = "Failed to load progress"
	defaultCompleteError = "Failed to save progress"
)

// DeviceIdentity supplies the key of the participant's remote record.
type DeviceIdentity interface {
	DeviceID() string
}

// RemoteBackend keeps progress in a networked record store, one record per
// device identity. It never caches: every call consults the store.
type RemoteBackend struct {
	identity DeviceIdentity
	store    records.Store
	logger   *zap.Logger
	now      func() time.Time
}

// NewRemoteBackend creates a backend that keys records by id.DeviceID().
func NewRemoteBackend(id DeviceIdentity, store records.Store, logger *zap.Logger) *RemoteBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteBackend{
		identity: id,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// FetchProgress looks up the record for the current device. A missing record
// is an empty, ready progress; a failed lookup is an error state.
func (b *RemoteBackend) FetchProgress(ctx context.Context) State {
	deviceID := b.deviceID()

	rec, err := b.store.Get(ctx, deviceID)
	if records.IsNotFound(err) {
		b.logger.Debug("no remote progress yet", zap.String("device_id", deviceID))
		return Ready(nil)
	}
	if err != nil {
		b.logger.Warn("failed to fetch remote progress", zap.String("device_id", deviceID), zap.Error(err))
		return Failed(messageOr(err, defaultFetchError))
	}

	return Ready(dedupe(rec.CompletedSlugs))
}

// CompleteStage re-reads the record, returns early if slug is already
// recorded, and otherwise upserts the record with slug appended.
//
// The read-before-write narrows but does not close the window in which two
// devices completing stages at once can overwrite each other.
func (b *RemoteBackend) CompleteStage(ctx context.Context, slug string) Result {
	deviceID := b.deviceID()

	var current []string
	rec, err := b.store.Get(ctx, deviceID)
	switch {
	case records.IsNotFound(err):
		current = []string{}
	case err != nil:
		b.logger.Warn("failed to read remote progress before write", zap.String("device_id", deviceID), zap.Error(err))
		return Rejected(messageOr(err, defaultCompleteError))
	default:
		current = dedupe(rec.CompletedSlugs)
	}

	if contains(current, slug) {
		return Succeeded()
	}

	next := &records.Record{
		DeviceID:       deviceID,
		CompletedSlugs: append(current, slug),
		UpdatedAt:      b.now().UTC(),
	}
	if err := b.store.Upsert(ctx, next); err != nil {
		b.logger.Warn("failed to save remote progress", zap.String("device_id", deviceID), zap.String("slug", slug), zap.Error(err))
		return Rejected(messageOr(err, defaultCompleteError))
	}

	b.logger.Debug("stage completed remotely",
		zap.String("device_id", deviceID),
		zap.String("slug", slug),
		zap.Int("completed", len(next.CompletedSlugs)))
	return Succeeded()
}

func (b *RemoteBackend) deviceID() string {
	var id string
	if b.identity != nil {
		id = b.identity.DeviceID()
	}
	if id == "" {
		id = identity.Sentinel
	}
	if identity.IsSentinel(id) {
		b.logger.Warn("no stable device identity; remote progress is not associated with this participant")
	}
	return id
}

func messageOr(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
