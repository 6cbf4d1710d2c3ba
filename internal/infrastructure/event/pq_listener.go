package event

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PQListenerConfig holds LISTEN/NOTIFY bridge settings
type PQListenerConfig struct {
	DSN                  string
	Channel              string
	MinReconnectInterval time.Duration
	MaxReconnectInterval time.Duration
	// PingInterval is how long the connection may stay idle before it is checked
	PingInterval time.Duration
}

// DefaultPQListenerConfig returns default listener settings
func DefaultPQListenerConfig() PQListenerConfig {
	return PQListenerConfig{
		Channel:              "booking_changed",
		MinReconnectInterval: 10 * time.Second,
		MaxReconnectInterval: time.Minute,
		PingInterval:         90 * time.Second,
	}
}

// notificationSource is the part of *pq.Listener the bridge uses
type notificationSource interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// PQListener turns PostgreSQL notifications carrying an apartment id into
// BookingChanged events on the bus
type PQListener struct {
	cfg         PQListenerConfig
	source      notificationSource
	publisher   shared.EventPublisher
	logger      *zap.Logger
	onReconnect func(ctx context.Context)
	now         func() time.Time
}

// PQListenerOption configures a PQListener
type PQListenerOption func(*PQListener)

// WithReconnectHook runs fn after the connection is re-established. Notifications
// sent while disconnected are lost, so fn should resynchronize.
func WithReconnectHook(fn func(ctx context.Context)) PQListenerOption {
	return func(l *PQListener) {
		l.onReconnect = fn
	}
}

// NewPQListener creates a bridge backed by a lib/pq listener
func NewPQListener(cfg PQListenerConfig, publisher shared.EventPublisher, logger *zap.Logger, opts ...PQListenerOption) (*PQListener, error) {
	if cfg.DSN == "" {
		return nil, errors.New("pq listener: dsn is required")
	}
	if cfg.Channel == "" {
		return nil, errors.New("pq listener: channel is required")
	}

	callback := func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Info("notification listener connected", zap.String("channel", cfg.Channel))
		case pq.ListenerEventDisconnected:
			logger.Warn("notification listener disconnected", zap.Error(err))
		case pq.ListenerEventReconnected:
			logger.Info("notification listener reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("notification listener connection attempt failed", zap.Error(err))
		}
	}
	source := pq.NewListener(cfg.DSN, cfg.MinReconnectInterval, cfg.MaxReconnectInterval, callback)
	return newPQListener(cfg, source, publisher, logger, opts...), nil
}

func newPQListener(cfg PQListenerConfig, source notificationSource, publisher shared.EventPublisher, logger *zap.Logger, opts ...PQListenerOption) *PQListener {
	l := &PQListener{
		cfg:       cfg,
		source:    source,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run listens until ctx is done, then closes the connection
func (l *PQListener) Run(ctx context.Context) error {
	if err := l.source.Listen(l.cfg.Channel); err != nil {
		_ = l.source.Close()
		return fmt.Errorf("listen on %q: %w", l.cfg.Channel, err)
	}
	defer l.source.Close()

	interval := l.cfg.PingInterval
	if interval <= 0 {
		interval = 90 * time.Second
	}
	idle := time.NewTimer(interval)
	defer idle.Stop()

	notifications := l.source.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notifications:
			if !ok {
				return errors.New("notification channel closed")
			}
			l.handle(ctx, n)
			idle.Reset(interval)
		case <-idle.C:
			go func() {
				if err := l.source.Ping(); err != nil {
					l.logger.Warn("notification listener ping failed", zap.Error(err))
				}
			}()
			idle.Reset(interval)
		}
	}
}

// handle publishes one notification. A nil notification signals a reconnect.
func (l *PQListener) handle(ctx context.Context, n *pq.Notification) {
	if n == nil {
		if l.onReconnect != nil {
			l.onReconnect(ctx)
		}
		return
	}

	apartmentID, err := ParseApartmentPayload(n.Extra)
	if err != nil {
		l.logger.Warn("ignoring notification with invalid payload",
			zap.String("channel", n.Channel),
			zap.String("payload", n.Extra),
			zap.Error(err),
		)
		return
	}

	event := occupancy.NewBookingChangedEvent(apartmentID, l.now())
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.Error("failed to publish booking change",
			zap.Int64("apartment_id", apartmentID),
			zap.Error(err),
		)
	}
}

// ParseApartmentPayload reads the apartment id a booking trigger sends as payload
func ParseApartmentPayload(payload string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("payload %q is not an apartment id", payload)
	}
	if id <= 0 {
		return 0, fmt.Errorf("payload %q is not a positive apartment id", payload)
	}
	return id, nil
}
