package occupancy

import (
	"context"
	"fmt"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
	"go.uber.org/zap"
)

// BookingChangedHandler drops the cached projection of an apartment whose bookings changed
type BookingChangedHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewBookingChangedHandler creates a new handler for booking changed events
func NewBookingChangedHandler(service *Service, logger *zap.Logger) *BookingChangedHandler {
	return &BookingChangedHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *BookingChangedHandler) EventTypes() []string {
	return []string{occupancy.EventTypeBookingChanged}
}

// Handle invalidates the apartment's projection
func (h *BookingChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*occupancy.BookingChangedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", occupancy.EventTypeBookingChanged),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			occupancy.EventTypeBookingChanged, event.EventType())
	}

	if err := h.service.Invalidate(ctx, changed.ApartmentID); err != nil {
		h.logger.Error("failed to invalidate occupancy projection",
			zap.Int64("apartment_id", changed.ApartmentID),
			zap.Error(err),
		)
		return err
	}

	h.logger.Debug("occupancy projection invalidated",
		zap.Int64("apartment_id", changed.ApartmentID),
		zap.String("event_id", changed.EventID().String()),
	)
	return nil
}
