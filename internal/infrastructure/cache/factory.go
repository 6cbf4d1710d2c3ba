package cache

import (
	"fmt"
	"io"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"go.uber.org/zap"
)

// ProjectionCache is an occupancy cache that holds resources
type ProjectionCache interface {
	occupancy.ProjectionCache
	io.Closer
}

// OccupancyCacheFactory creates occupancy caches based on configuration
type OccupancyCacheFactory struct {
	redisConfig           RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	connect               func(RedisConfig) (ProjectionCache, error)
}

// OccupancyCacheFactoryOption is a functional option for configuring the factory
type OccupancyCacheFactoryOption func(*OccupancyCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) OccupancyCacheFactoryOption {
	return func(f *OccupancyCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis
// is unavailable. Default is true.
func WithInMemoryFallback(allow bool) OccupancyCacheFactoryOption {
	return func(f *OccupancyCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewOccupancyCacheFactory creates a new factory
func NewOccupancyCacheFactory(cfg RedisConfig, opts ...OccupancyCacheFactoryOption) *OccupancyCacheFactory {
	f := &OccupancyCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connect: func(cfg RedisConfig) (ProjectionCache, error) {
			return NewRedisOccupancyCache(cfg)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-backed cache
func (f *OccupancyCacheFactory) CreateRedisCache() (ProjectionCache, error) {
	c, err := f.connect(f.redisConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis occupancy cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates an in-memory cache. Projections are not shared across
// processes, so invalidations published to other instances do not reach it.
func (f *OccupancyCacheFactory) CreateInMemoryCache() ProjectionCache {
	return NewInMemoryOccupancyCache(0)
}

// CreateCache tries Redis first and falls back to memory when allowed
func (f *OccupancyCacheFactory) CreateCache() (ProjectionCache, error) {
	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis occupancy cache")
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for occupancy cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory occupancy cache. "+
		"Booking invalidations from other instances will not be seen.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
