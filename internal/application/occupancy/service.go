package occupancy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/logger"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Config holds occupancy service settings
type Config struct {
	CacheEnabled bool
	// CacheTTL caps how long a projection is served; it is cut short at the next booking transition
	CacheTTL time.Duration
}

// DefaultConfig returns the default occupancy settings
func DefaultConfig() Config {
	return Config{CacheEnabled: true, CacheTTL: 10 * time.Minute}
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *telemetry.LedgerMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStatusView attaches the database-side projection for view refreshes and cross-checks
func WithStatusView(view occupancy.StatusViewRepository) Option {
	return func(s *Service) {
		s.view = view
	}
}

// Service answers occupancy status queries. The resolver is always the source of truth;
// the cache only holds projections still valid at the queried instant.
type Service struct {
	bookings occupancy.BookingRepository
	cache    occupancy.ProjectionCache
	view     occupancy.StatusViewRepository
	cfg      Config
	logger   *zap.Logger
	metrics  *telemetry.LedgerMetrics

	// generations counts invalidations per apartment; a refresh that saw a
	// different generation before its fetch must not leave its projection cached
	mu          sync.Mutex
	generations map[int64]uint64
}

// NewService creates a new Service. cache may be nil.
func NewService(bookings occupancy.BookingRepository, cache occupancy.ProjectionCache, cfg Config, opts ...Option) *Service {
	s := &Service{
		bookings: bookings,
		cache:    cache,
		cfg:         cfg,
		logger:      zap.NewNop(),
		generations: make(map[int64]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) cacheEnabled() bool {
	return s.cfg.CacheEnabled && s.cache != nil
}

// CurrentStatus returns the occupancy projection of an apartment at now
func (s *Service) CurrentStatus(ctx context.Context, apartmentID int64, now time.Time) (occupancy.Projection, error) {
	if apartmentID <= 0 {
		return occupancy.Projection{}, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("invalid apartment id %d", apartmentID))
	}

	ctx = logger.WithApartmentID(ctx, apartmentID)
	ctx, span := telemetry.StartSpan(ctx, "occupancy.current_status",
		telemetry.WithAttribute(telemetry.SpanAttrApartmentID, apartmentID))
	defer span.End()

	if s.cacheEnabled() {
		p, found, err := s.cache.Get(ctx, apartmentID)
		switch {
		case err != nil:
			logger.WithLogger(ctx, s.logger).Warn("occupancy cache read failed", zap.Error(err))
		case found && p.IsValidAt(now):
			s.metrics.RecordCacheLookup(ctx, true)
			telemetry.SetAttributes(span,
				telemetry.SpanAttrCacheHit, true,
				telemetry.SpanAttrOccupancyStatus, p.Status.String(),
			)
			return p, nil
		}
		s.metrics.RecordCacheLookup(ctx, false)
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrCacheHit, false)

	p, err := s.refresh(ctx, apartmentID, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return occupancy.Projection{}, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOccupancyStatus, p.Status.String())
	return p, nil
}

// Refresh recomputes an apartment's projection from its bookings and stores it
func (s *Service) Refresh(ctx context.Context, apartmentID int64, now time.Time) (occupancy.Projection, error) {
	ctx = logger.WithApartmentID(ctx, apartmentID)
	p, err := s.refresh(ctx, apartmentID, now)
	s.metrics.RecordRefresh(ctx, err)
	return p, err
}

func (s *Service) generation(apartmentID int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[apartmentID]
}

func (s *Service) bumpGeneration(apartmentID int64) {
	s.mu.Lock()
	s.generations[apartmentID]++
	s.mu.Unlock()
}

func (s *Service) refresh(ctx context.Context, apartmentID int64, now time.Time) (occupancy.Projection, error) {
	gen := s.generation(apartmentID)
	bookings, err := s.bookings.FetchBookings(ctx, apartmentID)
	if err != nil {
		return occupancy.Projection{}, fmt.Errorf("fetch bookings for apartment %d: %w",
			apartmentID, shared.ErrCollaboratorUnavailable.Wrap(err))
	}

	p := occupancy.NewProjection(apartmentID, now, bookings, s.cfg.CacheTTL)
	if s.cacheEnabled() {
		s.store(ctx, p, gen)
	}
	logger.WithLogger(ctx, s.logger).Debug("occupancy resolved",
		zap.String("status", p.Status.String()),
		zap.Time("valid_until", p.ValidUntil),
	)
	return p, nil
}

// store caches p unless the apartment was invalidated after gen was read.
// An invalidation landing between the check and the write is caught by the
// second check, which removes the entry again.
func (s *Service) store(ctx context.Context, p occupancy.Projection, gen uint64) {
	log := logger.WithLogger(ctx, s.logger)
	if s.generation(p.ApartmentID) != gen {
		log.Debug("occupancy changed during refresh, projection not cached")
		return
	}
	if err := s.cache.Set(ctx, p); err != nil {
		log.Warn("occupancy cache write failed", zap.Error(err))
		return
	}
	if s.generation(p.ApartmentID) != gen {
		if err := s.cache.Delete(ctx, p.ApartmentID); err != nil {
			log.Warn("occupancy cache rollback failed", zap.Error(err))
		}
	}
}

// Invalidate drops the cached projection of an apartment. Refreshes already
// in flight for it will not cache what they computed.
func (s *Service) Invalidate(ctx context.Context, apartmentID int64) error {
	if !s.cacheEnabled() {
		return nil
	}
	s.bumpGeneration(apartmentID)
	if err := s.cache.Delete(ctx, apartmentID); err != nil {
		return fmt.Errorf("invalidate occupancy of apartment %d: %w", apartmentID, err)
	}
	return nil
}

// RefreshView refreshes the database-side projection; a no-op without one
func (s *Service) RefreshView(ctx context.Context) error {
	if s.view == nil {
		return nil
	}
	if err := s.view.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh occupancy view: %w", err)
	}
	return nil
}

// Mismatch is a disagreement between the resolver and the database-side projection
type Mismatch struct {
	ApartmentID int64            `json:"apartment_id"`
	Resolved    occupancy.Status `json:"resolved"`
	View        occupancy.Status `json:"view"`
}

// CrossCheck compares the resolver with the database-side projection for one apartment.
// It returns nil when both agree or no view is attached.
func (s *Service) CrossCheck(ctx context.Context, apartmentID int64, now time.Time) (*Mismatch, error) {
	if s.view == nil {
		return nil, nil
	}
	bookings, err := s.bookings.FetchBookings(ctx, apartmentID)
	if err != nil {
		return nil, fmt.Errorf("fetch bookings for apartment %d: %w",
			apartmentID, shared.ErrCollaboratorUnavailable.Wrap(err))
	}
	viewStatus, err := s.view.FindStatus(ctx, apartmentID)
	if err != nil {
		return nil, fmt.Errorf("read occupancy view: %w", err)
	}
	resolved := occupancy.Resolve(now, bookings)
	if resolved == viewStatus {
		return nil, nil
	}
	return &Mismatch{ApartmentID: apartmentID, Resolved: resolved, View: viewStatus}, nil
}
