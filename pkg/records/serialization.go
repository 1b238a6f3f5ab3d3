package records

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Serialization helpers for converting between records and Redis hashes
//
// Redis stores data as string-to-string maps. The completed slug list is
// JSON-encoded into a single hash field; the timestamp is stored as Unix
// milliseconds.

// RecordToHash converts a Record to a Redis hash.
func RecordToHash(r *Record) (map[string]interface{}, error) {
	slugs := r.CompletedSlugs
	if slugs == nil {
		slugs = []string{}
	}
	slugsJSON, err := json.Marshal(slugs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completed slugs: %w", err)
	}

	return map[string]interface{}{
		"device_id":       r.DeviceID,
		"completed_slugs": string(slugsJSON),
		"updated_at_ms":   r.UpdatedAt.UnixMilli(),
	}, nil
}

// HashToRecord converts a Redis hash to a Record.
// A missing or empty completed_slugs field decodes to an empty list.
func HashToRecord(hash map[string]string) (*Record, error) {
	slugs, err := decodeSlugs(hash["completed_slugs"])
	if err != nil {
		return nil, err
	}

	var updatedAt time.Time
	if raw := hash["updated_at_ms"]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid updated_at_ms field: %w", err)
		}
		updatedAt = time.UnixMilli(ms)
	}

	return &Record{
		DeviceID:       hash["device_id"],
		CompletedSlugs: slugs,
		UpdatedAt:      updatedAt,
	}, nil
}

// decodeSlugs parses the stored JSON array. Empty slugs are dropped so that
// what is read always passes Record.Validate when written back.
func decodeSlugs(raw string) ([]string, error) {
	var decoded []string
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completed_slugs: %w", err)
		}
	}
	slugs := make([]string, 0, len(decoded))
	for _, s := range decoded {
		if s != "" {
			slugs = append(slugs, s)
		}
	}
	return slugs, nil
}
