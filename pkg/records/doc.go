// Package records provides the networked record store that holds one
// progress record per device identity.
//
// # Overview
//
// A Record is the set of completed stage slugs for one participant, keyed by
// device ID and stamped with the time of its last write. Stores support
// exactly two data operations: a point lookup by device ID, which reports a
// missing record as ErrNotFound rather than a failure, and an upsert-by-key
// write that creates the record on first use and replaces it in place
// afterwards. A device never owns more than one record.
//
// Two implementations are provided:
//
//   - RedisStore keeps each record in a namespaced Redis hash and announces
//     every write on a Pub/Sub channel so other devices can follow along.
//   - SQLiteStore keeps records in a single hunt_progress table, for
//     deployments that share a database file instead of a Redis server.
//
// # Usage Example
//
//	store, err := records.NewRedisStore(&redis.Options{Addr: "localhost:6379"}, "default")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	rec, err := store.Get(ctx, deviceID)
//	if records.IsNotFound(err) {
//		rec = &records.Record{DeviceID: deviceID, CompletedSlugs: []string{}}
//	} else if err != nil {
//		return err
//	}
//
//	rec.CompletedSlugs = append(rec.CompletedSlugs, "7f3a9c")
//	rec.UpdatedAt = time.Now()
//	err = store.Upsert(ctx, rec)
//
// # Redis Schema
//
// All Redis keys follow the pattern: hunt:{namespace}:{entity}:{device_id}
//
// Progress records: hunt:{namespace}:progress:{device_id}
//
// Pub/Sub channel: hunt:{namespace}:progress_events
//
// # Concurrency
//
// Writes are last-writer-wins. Two devices completing stages for the same
// identity at the same moment may lose one completion; callers narrow the
// window by reading immediately before writing.
package records
