package occupancy

import (
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
)

// Aggregate type constant for apartments
const AggregateTypeApartment = "Apartment"

// Event type constants for occupancy
const (
	EventTypeBookingChanged = "BookingChanged"
)

// BookingChangedEvent is raised when any booking of an apartment is created, updated or deleted
type BookingChangedEvent struct {
	shared.BaseDomainEvent
	ApartmentID int64 `json:"apartment_id"`
}

// NewBookingChangedEvent creates a new BookingChangedEvent
func NewBookingChangedEvent(apartmentID int64, occurredAt time.Time) *BookingChangedEvent {
	return &BookingChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingChanged, AggregateTypeApartment, apartmentID, occurredAt),
		ApartmentID:     apartmentID,
	}
}
