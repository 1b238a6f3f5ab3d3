// Package watch waits for progress made elsewhere: another device of the same
// participant completing a stage against the shared record store.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/hunt/pkg/records"
)

// PollInterval is how often PollForStage queries the store.
const PollInterval = 200 * time.Millisecond

// RecordReader is the read side of a records.Store.
type RecordReader interface {
	Get(ctx context.Context, deviceID string) (*records.Record, error)
}

// PollForStage polls store until the record for deviceID contains slug, or
// until timeout elapses. An empty slug waits for the record to exist at all.
func PollForStage(ctx context.Context, store RecordReader, deviceID, slug string, timeout time.Duration) (*records.Record, error) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timer.C:
			if slug == "" {
				return nil, fmt.Errorf("timeout waiting for progress from device %s after %v", deviceID, timeout)
			}
			return nil, fmt.Errorf("timeout waiting for stage '%s' after %v", slug, timeout)

		case <-ticker.C:
			rec, err := store.Get(ctx, deviceID)
			if err != nil {
				if records.IsNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("failed to query progress: %w", err)
			}
			if slug == "" || rec.Contains(slug) {
				return rec, nil
			}
		}
	}
}

// EventSource delivers progress events, e.g. a *records.Subscription.
type EventSource interface {
	Events() <-chan records.ProgressEvent
	Errors() <-chan error
}

// Follow passes each event from src to handle until ctx is cancelled or the
// source closes. A non-empty deviceID filters events to that device.
// Decode errors from the source are reported to onError and skipped.
func Follow(ctx context.Context, src EventSource, deviceID string, handle func(records.ProgressEvent) error, onError func(error)) error {
	events := src.Events()
	errs := src.Errors()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if onError != nil {
				onError(err)
			}

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if deviceID != "" && ev.DeviceID != deviceID {
				continue
			}
			if err := handle(ev); err != nil {
				return err
			}
		}
	}
}
