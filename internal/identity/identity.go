// Package identity produces and persists the stable per-client device ID that
// ties a participant to their remote progress record.
package identity

import (
	"github.com/dyluth/hunt/internal/kv"
	"github.com/google/uuid"
)

const (
	// StorageKey is the KV key holding the device ID.
	StorageKey = "hunt_device_id"

	// Sentinel is returned when no durable storage is available. Callers must
	// treat it as "no stable identity".
	Sentinel = "ssr"
)

// Provider hands out the device ID for one persistent storage scope.
type Provider struct {
	store kv.Store
	newID func() string
}

// New creates a provider over store. A nil store means durable storage is
// unavailable and every call yields Sentinel.
func New(store kv.Store) *Provider {
	return &Provider{
		store: store,
		newID: func() string { return uuid.New().String() },
	}
}

// DeviceID returns the stored device ID, generating and persisting a random
// UUID on first use. It never fails: if the ID cannot be persisted the
// Sentinel is returned instead of an identity that would not survive.
func (p *Provider) DeviceID() string {
	if p == nil || p.store == nil {
		return Sentinel
	}

	if id, ok := p.store.Get(StorageKey); ok && id != "" {
		return id
	}

	id := p.newID()
	if err := p.store.Set(StorageKey, id); err != nil {
		return Sentinel
	}
	return id
}

// IsSentinel reports whether id carries no stable identity.
func IsSentinel(id string) bool {
	return id == Sentinel
}
