// Package kv provides the durable, synchronous key-value persistence primitive
// used for client-side state: the device identity and the local progress
// record. Values are opaque strings; callers own their encoding.
package kv

// Store is a synchronous string key-value store.
//
// Get reports absent keys with ok=false. Implementations must tolerate
// missing or malformed backing data by treating it as absent rather than
// failing.
type Store interface {
	Get(key string) (value string, ok bool)
	Set(key, value string) error
}
