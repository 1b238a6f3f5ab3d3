package records

import (
	"fmt"
	"time"
)

// Record is the persisted progress of one participant.
type Record struct {
	DeviceID       string    `json:"device_id"`       // Participant identity, the record key
	CompletedSlugs []string  `json:"completed_slugs"` // Completed stage slugs, set semantics, insertion order
	UpdatedAt      time.Time `json:"updated_at"`      // Time of the last upsert
}

// Validate checks that the record can be stored.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if r.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	seen := make(map[string]struct{}, len(r.CompletedSlugs))
	for _, slug := range r.CompletedSlugs {
		if slug == "" {
			return fmt.Errorf("completed_slugs must not contain empty slugs")
		}
		if _, dup := seen[slug]; dup {
			return fmt.Errorf("completed_slugs contains duplicate slug '%s'", slug)
		}
		seen[slug] = struct{}{}
	}
	return nil
}

// Contains reports whether slug has been completed.
func (r *Record) Contains(slug string) bool {
	if r == nil {
		return false
	}
	for _, s := range r.CompletedSlugs {
		if s == slug {
			return true
		}
	}
	return false
}

// ProgressEvent is published after every successful upsert.
type ProgressEvent struct {
	DeviceID       string   `json:"device_id"`
	CompletedSlugs []string `json:"completed_slugs"`
	UpdatedAtMs    int64    `json:"updated_at_ms"`
}

// NewProgressEvent builds the event announcing r.
func NewProgressEvent(r *Record) ProgressEvent {
	slugs := make([]string, len(r.CompletedSlugs))
	copy(slugs, r.CompletedSlugs)
	return ProgressEvent{
		DeviceID:       r.DeviceID,
		CompletedSlugs: slugs,
		UpdatedAtMs:    r.UpdatedAt.UnixMilli(),
	}
}
