package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExpiryFor(t *testing.T) {
	p := projection(1, occupancy.StatusBooked, time.Minute)

	assert.Equal(t, time.Minute, expiryFor(p, base))
	assert.Equal(t, 30*time.Second, expiryFor(p, base.Add(30*time.Second)))
	assert.Zero(t, expiryFor(p, base.Add(time.Minute)))
	assert.Zero(t, expiryFor(p, base.Add(time.Hour)))
	assert.Zero(t, expiryFor(p, base.Add(time.Minute-time.Microsecond)))
}

func TestRedisOccupancyCache_KeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	assert.Equal(t, "occupancy:projection:42", NewRedisOccupancyCacheWithClient(client, "").key(42))
	assert.Equal(t, "tv:7", NewRedisOccupancyCacheWithClient(client, "tv:").key(7))
}

func TestRedisOccupancyCache_UnreachableServer(t *testing.T) {
	_, err := NewRedisOccupancyCache(RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.ErrorContains(t, err, "failed to connect to Redis")

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	c := NewRedisOccupancyCacheWithClient(client, "")
	c.now = func() time.Time { return base }

	_, _, err = c.Get(context.Background(), 1)
	assert.ErrorContains(t, err, "failed to read occupancy projection")
	err = c.Set(context.Background(), projection(1, occupancy.StatusBooked, time.Minute))
	assert.ErrorContains(t, err, "failed to store occupancy projection")
}

type closableCache struct {
	*InMemoryOccupancyCache
}

func TestOccupancyCacheFactory(t *testing.T) {
	unavailable := func(RedisConfig) (ProjectionCache, error) { return nil, errors.New("dial tcp: refused") }

	t.Run("falls back to memory", func(t *testing.T) {
		f := NewOccupancyCacheFactory(RedisConfig{}, WithLogger(zap.NewNop()))
		f.connect = unavailable

		c, err := f.CreateCache()
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryOccupancyCache{}, c)
	})

	t.Run("fallback can be disabled", func(t *testing.T) {
		f := NewOccupancyCacheFactory(RedisConfig{}, WithInMemoryFallback(false))
		f.connect = unavailable

		_, err := f.CreateCache()
		assert.ErrorContains(t, err, "redis required")
	})

	t.Run("uses redis when reachable", func(t *testing.T) {
		f := NewOccupancyCacheFactory(RedisConfig{})
		want := closableCache{NewInMemoryOccupancyCache(0)}
		f.connect = func(RedisConfig) (ProjectionCache, error) { return want, nil }

		c, err := f.CreateCache()
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, want, c)
	})
}
