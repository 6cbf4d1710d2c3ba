package occupancy

import (
	"context"
	"time"
)

// Projection is a cached resolution of an apartment's status. It is derived data:
// the resolver is the source of truth and a projection is only served while valid.
type Projection struct {
	ApartmentID int64     `json:"apartment_id"`
	Status      Status    `json:"status"`
	BookingID   *int64    `json:"booking_id,omitempty"`
	ComputedAt  time.Time `json:"computed_at"`
	ValidUntil  time.Time `json:"valid_until"`
}

// NewProjection builds a projection valid until the earlier of now+ttl and the next
// booking transition
func NewProjection(apartmentID int64, now time.Time, bookings []Booking, ttl time.Duration) Projection {
	res := Decide(now, bookings)
	p := Projection{
		ApartmentID: apartmentID,
		Status:      res.Status,
		ComputedAt:  now,
		ValidUntil:  now.Add(ttl),
	}
	if res.Booking != nil {
		id := res.Booking.ID
		p.BookingID = &id
	}
	if next, ok := NextTransition(now, bookings); ok && next.Before(p.ValidUntil) {
		p.ValidUntil = next
	}
	return p
}

// IsValidAt reports whether the projection can answer for now
func (p Projection) IsValidAt(now time.Time) bool {
	return !now.Before(p.ComputedAt) && now.Before(p.ValidUntil)
}

// ProjectionCache stores projections per apartment
type ProjectionCache interface {
	// Get returns the cached projection; found is false on a miss
	Get(ctx context.Context, apartmentID int64) (p Projection, found bool, err error)
	Set(ctx context.Context, p Projection) error
	Delete(ctx context.Context, apartmentID int64) error
}
