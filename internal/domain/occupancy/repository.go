package occupancy

import "context"

// BookingRepository fetches the bookings of an apartment
type BookingRepository interface {
	FetchBookings(ctx context.Context, apartmentID int64) ([]Booking, error)
}

// ApartmentRepository enumerates apartments for projection refreshes
type ApartmentRepository interface {
	ListApartmentIDs(ctx context.Context) ([]int64, error)
}

// StatusViewRepository reads the database-side occupancy projection
type StatusViewRepository interface {
	Refresh(ctx context.Context) error
	FindStatus(ctx context.Context, apartmentID int64) (Status, error)
}
