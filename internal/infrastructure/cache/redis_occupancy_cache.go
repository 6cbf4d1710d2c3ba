package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces occupancy projections in Redis
const DefaultKeyPrefix = "occupancy:projection:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// RedisOccupancyCache stores occupancy projections in Redis as JSON. Each key expires
// with its projection, so instances share projections and invalidations.
type RedisOccupancyCache struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// NewRedisOccupancyCache connects to Redis and verifies the connection
func NewRedisOccupancyCache(cfg RedisConfig) (*RedisOccupancyCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisOccupancyCacheWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisOccupancyCacheWithClient creates a cache with an existing Redis client
func NewRedisOccupancyCacheWithClient(client *redis.Client, keyPrefix string) *RedisOccupancyCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisOccupancyCache{
		client:    client,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

func (c *RedisOccupancyCache) key(apartmentID int64) string {
	return c.keyPrefix + strconv.FormatInt(apartmentID, 10)
}

// Get returns the cached projection of an apartment
func (c *RedisOccupancyCache) Get(ctx context.Context, apartmentID int64) (occupancy.Projection, bool, error) {
	data, err := c.client.Get(ctx, c.key(apartmentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return occupancy.Projection{}, false, nil
	}
	if err != nil {
		return occupancy.Projection{}, false, fmt.Errorf("failed to read occupancy projection: %w", err)
	}

	var p occupancy.Projection
	if err := json.Unmarshal(data, &p); err != nil {
		return occupancy.Projection{}, false, fmt.Errorf("failed to decode occupancy projection: %w", err)
	}
	return p, true, nil
}

// Set stores a projection until its ValidUntil. A projection already expired is not stored.
func (c *RedisOccupancyCache) Set(ctx context.Context, p occupancy.Projection) error {
	ttl := expiryFor(p, c.now())
	if ttl <= 0 {
		return c.Delete(ctx, p.ApartmentID)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode occupancy projection: %w", err)
	}
	if err := c.client.Set(ctx, c.key(p.ApartmentID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store occupancy projection: %w", err)
	}
	return nil
}

// Delete removes an apartment's projection
func (c *RedisOccupancyCache) Delete(ctx context.Context, apartmentID int64) error {
	if err := c.client.Del(ctx, c.key(apartmentID)).Err(); err != nil {
		return fmt.Errorf("failed to delete occupancy projection: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisOccupancyCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisOccupancyCache) GetClient() *redis.Client {
	return c.client
}

// expiryFor returns how long a projection may be kept. Redis expirations have
// millisecond resolution, so sub-millisecond remainders count as expired.
func expiryFor(p occupancy.Projection, now time.Time) time.Duration {
	ttl := p.ValidUntil.Sub(now)
	if ttl < time.Millisecond {
		return 0
	}
	return ttl
}

var _ occupancy.ProjectionCache = (*RedisOccupancyCache)(nil)
