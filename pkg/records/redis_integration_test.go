//go:build integration

package records

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container for testing.
func setupRedis(t *testing.T) string {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err)

	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func TestRedisStore_AgainstRealRedis(t *testing.T) {
	redisURL := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewRedisStoreFromURL(redisURL, "integration")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(ctx))

	_, err = store.Get(ctx, "dev")
	require.True(t, IsNotFound(err))

	sub, err := store.SubscribeProgressEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, store.Upsert(ctx, &Record{DeviceID: "dev", CompletedSlugs: []string{"B"}, UpdatedAt: time.Now()}))

	rec, err := store.Get(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, rec.CompletedSlugs)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, "dev", ev.DeviceID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for progress event")
	}
}
