package records

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced so several hunts can
// share one Redis server.
//
// Key pattern: hunt:{namespace}:{entity}:{device_id}
// Channel pattern: hunt:{namespace}:{event_type}_events

// ProgressKey returns the Redis key for a device's progress record.
// Pattern: hunt:{namespace}:progress:{device_id}
func ProgressKey(namespace, deviceID string) string {
	return fmt.Sprintf("hunt:%s:progress:%s", namespace, deviceID)
}

// ProgressEventsChannel returns the Pub/Sub channel for progress events.
// Pattern: hunt:{namespace}:progress_events
func ProgressEventsChannel(namespace string) string {
	return fmt.Sprintf("hunt:%s:progress_events", namespace)
}
