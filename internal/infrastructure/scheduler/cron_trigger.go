package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ApartmentProvider lists the apartments a sweep refreshes
type ApartmentProvider interface {
	ListApartmentIDs(ctx context.Context) ([]int64, error)
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// Spec is a six-field cron expression (with seconds), evaluated in UTC
	Spec string
	// RefreshView also queues a materialized view refresh after each sweep
	RefreshView bool
	// ListTimeout bounds the apartment listing of one sweep
	ListTimeout time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		Spec:        "0 */5 * * * *",
		RefreshView: true,
		ListTimeout: 30 * time.Second,
	}
}

// SweepResult summarizes one sweep
type SweepResult struct {
	Apartments int
	Submitted  int
	Rejected   int
}

// CronTrigger periodically queues a refresh job for every apartment
type CronTrigger struct {
	config     CronTriggerConfig
	scheduler  *Scheduler
	apartments ApartmentProvider
	logger     *zap.Logger

	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	sweeping atomic.Bool
}

// NewCronTrigger creates a new cron trigger; the cron expression is parsed eagerly
func NewCronTrigger(
	config CronTriggerConfig,
	scheduler *Scheduler,
	apartments ApartmentProvider,
	logger *zap.Logger,
) (*CronTrigger, error) {
	c := &CronTrigger{
		config:     config,
		scheduler:  scheduler,
		apartments: apartments,
		logger:     logger,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
	if _, err := c.cron.AddFunc(config.Spec, c.runScheduled); err != nil {
		return nil, fmt.Errorf("%w: cron spec %q: %v", ErrInvalidConfig, config.Spec, err)
	}
	return c, nil
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.cron.Start()

	c.logger.Info("Cron trigger started", zap.String("spec", c.config.Spec))
	return nil
}

// Stop stops the cron trigger and waits for a running sweep to return
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return nil
	}
	c.cancel()
	c.cancel = nil
	c.mu.Unlock()

	stopped := c.cron.Stop()
	select {
	case <-stopped.Done():
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextRun returns when the next sweep fires; zero before Start
func (c *CronTrigger) NextRun() time.Time {
	entries := c.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (c *CronTrigger) runScheduled() {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if _, err := c.TriggerSweep(ctx); err != nil {
		c.logger.Error("Scheduled refresh sweep failed", zap.Error(err))
	}
}

// TriggerSweep lists apartments and queues a refresh job for each, then a view
// refresh when configured. A full queue rejects individual jobs without aborting the sweep.
func (c *CronTrigger) TriggerSweep(ctx context.Context) (SweepResult, error) {
	if !c.sweeping.CompareAndSwap(false, true) {
		return SweepResult{}, ErrSweepInProgress
	}
	defer c.sweeping.Store(false)

	listCtx := ctx
	if c.config.ListTimeout > 0 {
		var cancel context.CancelFunc
		listCtx, cancel = context.WithTimeout(ctx, c.config.ListTimeout)
		defer cancel()
	}
	ids, err := c.apartments.ListApartmentIDs(listCtx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list apartments: %w", err)
	}

	res := SweepResult{Apartments: len(ids)}
	for _, id := range ids {
		if err := c.scheduler.ScheduleApartmentRefresh(id); err != nil {
			res.Rejected++
			c.logger.Warn("Failed to schedule apartment refresh",
				zap.Int64("apartment_id", id),
				zap.Error(err),
			)
			continue
		}
		res.Submitted++
	}

	if c.config.RefreshView {
		if err := c.scheduler.ScheduleViewRefresh(); err != nil {
			c.logger.Warn("Failed to schedule view refresh", zap.Error(err))
		}
	}

	c.logger.Info("Refresh sweep scheduled",
		zap.Int("apartments", res.Apartments),
		zap.Int("submitted", res.Submitted),
		zap.Int("rejected", res.Rejected),
	)
	return res, nil
}
