package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisStore provides namespaced Redis storage for progress records.
// The store is safe for concurrent use from multiple goroutines.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisStore creates a store for the given namespace.
// Returns an error if namespace is empty.
func NewRedisStore(redisOpts *redis.Options, namespace string) (*RedisStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &RedisStore{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// NewRedisStoreFromURL parses a redis:// URL and creates a store.
func NewRedisStoreFromURL(redisURL, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return NewRedisStore(opts, namespace)
}

// Namespace returns the key namespace.
func (s *RedisStore) Namespace() string {
	return s.namespace
}

// Close closes the Redis connection. Implements io.Closer.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Get retrieves the record for deviceID.
// Returns (nil, ErrNotFound) if the device has no record yet.
func (s *RedisStore) Get(ctx context.Context, deviceID string) (*Record, error) {
	key := ProgressKey(s.namespace, deviceID)

	hashData, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read progress from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, ErrNotFound
	}

	record, err := HashToRecord(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize progress: %w", err)
	}
	if record.DeviceID == "" {
		record.DeviceID = deviceID
	}

	return record, nil
}

// Upsert writes the record hash, replacing every field of an existing record,
// then publishes a ProgressEvent.
//
// The record lives at a single key derived from its device ID, so repeated
// upserts never create a second record. Event publication is best effort: a
// failed publish does not fail or undo the write.
func (s *RedisStore) Upsert(ctx context.Context, r *Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	hash, err := RecordToHash(r)
	if err != nil {
		return fmt.Errorf("failed to serialize progress: %w", err)
	}

	key := ProgressKey(s.namespace, r.DeviceID)
	if err := s.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return fmt.Errorf("failed to write progress to Redis: %w", err)
	}

	if payload, err := json.Marshal(NewProgressEvent(r)); err == nil {
		s.rdb.Publish(ctx, ProgressEventsChannel(s.namespace), payload)
	}

	return nil
}

// Subscription represents an active Pub/Sub subscription to progress events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan ProgressEvent
	errors <-chan error
	cancel func()
	done   <-chan struct{}
	once   sync.Once
}

// Events returns the channel of progress events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan ProgressEvent {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors (undecodable
// messages). The subscription continues after errors.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and waits for its goroutine to exit.
// Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return nil
}

// SubscribeProgressEvents subscribes to progress events for this namespace.
//
// Events are delivered on a buffered channel (size 10). Redis Pub/Sub is
// at-most-once: events published while nobody listens are not replayed.
func (s *RedisStore) SubscribeProgressEvents(ctx context.Context) (*Subscription, error) {
	channel := ProgressEventsChannel(s.namespace)
	pubsub := s.rdb.Subscribe(ctx, channel)

	// Wait for the subscription to be confirmed so no event published after
	// this call returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to progress events: %w", err)
	}

	eventsChan := make(chan ProgressEvent, 10)
	errorsChan := make(chan error, 10)
	done := make(chan struct{})

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(done)
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event ProgressEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal progress event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
		done:   done,
	}, nil
}
