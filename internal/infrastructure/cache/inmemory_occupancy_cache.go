package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
)

// InMemoryOccupancyCache keeps projections in a map.
// It is suitable for single-instance deployments and testing.
type InMemoryOccupancyCache struct {
	mu          sync.RWMutex
	projections map[int64]occupancy.Projection
	now         func() time.Time
	stopChan    chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewInMemoryOccupancyCache creates a new in-memory cache.
// It starts a background goroutine that evicts expired projections.
func NewInMemoryOccupancyCache(cleanupInterval time.Duration) *InMemoryOccupancyCache {
	c := &InMemoryOccupancyCache{
		projections: make(map[int64]occupancy.Projection),
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	c.wg.Add(1)
	go c.cleanupLoop(cleanupInterval)

	return c
}

// Get returns the stored projection; validity is for the caller to judge
func (c *InMemoryOccupancyCache) Get(_ context.Context, apartmentID int64) (occupancy.Projection, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.projections[apartmentID]
	return p, ok, nil
}

// Set stores a projection, replacing the previous one
func (c *InMemoryOccupancyCache) Set(_ context.Context, p occupancy.Projection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projections[p.ApartmentID] = p
	return nil
}

// Delete removes an apartment's projection
func (c *InMemoryOccupancyCache) Delete(_ context.Context, apartmentID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.projections, apartmentID)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryOccupancyCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryOccupancyCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup evicts projections whose validity has passed
func (c *InMemoryOccupancyCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, p := range c.projections {
		if !now.Before(p.ValidUntil) {
			delete(c.projections, id)
		}
	}
}

// Size returns the number of stored projections (for testing/monitoring)
func (c *InMemoryOccupancyCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.projections)
}

var _ occupancy.ProjectionCache = (*InMemoryOccupancyCache)(nil)
