package progress

import (
	"context"
	"encoding/json"

	"github.com/dyluth/hunt/internal/kv"
	"go.uber.org/zap"
)

// LocalStorageKey is the KV key holding the JSON array of completed slugs.
const LocalStorageKey = "hunt_completed_slugs"

// LocalBackend keeps a single implicit progress record in the client's
// durable key-value store. It is synchronous underneath but honours the same
// contract as RemoteBackend.
type LocalBackend struct {
	store  kv.Store
	logger *zap.Logger
}

// NewLocalBackend creates a backend over store. A nil store behaves like
// storage that is unavailable: progress always reads as empty and writes are
// dropped.
func NewLocalBackend(store kv.Store, logger *zap.Logger) *LocalBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalBackend{store: store, logger: logger}
}

// FetchProgress always succeeds. Absent, corrupt or wrongly shaped data reads
// as no progress.
func (b *LocalBackend) FetchProgress(ctx context.Context) State {
	return Ready(b.read())
}

// CompleteStage appends slug to the stored collection unless it is already
// present.
func (b *LocalBackend) CompleteStage(ctx context.Context, slug string) Result {
	current := b.read()
	if contains(current, slug) {
		return Succeeded()
	}
	if b.store == nil {
		return Succeeded()
	}

	encoded, err := json.Marshal(append(current, slug))
	if err != nil {
		return Rejected(err.Error())
	}
	if err := b.store.Set(LocalStorageKey, string(encoded)); err != nil {
		b.logger.Warn("failed to persist local progress", zap.String("slug", slug), zap.Error(err))
		return Rejected(err.Error())
	}

	b.logger.Debug("stage completed locally", zap.String("slug", slug), zap.Int("completed", len(current)+1))
	return Succeeded()
}

func (b *LocalBackend) read() []string {
	if b.store == nil {
		return []string{}
	}
	raw, ok := b.store.Get(LocalStorageKey)
	if !ok || raw == "" {
		return []string{}
	}

	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		b.logger.Debug("ignoring malformed local progress", zap.Error(err))
		return []string{}
	}

	slugs := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			slugs = append(slugs, s)
		}
	}
	return dedupe(slugs)
}
