package occupancy

import "time"

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusBooked     BookingStatus = "Booked"
	BookingStatusCheckedIn  BookingStatus = "Checked In"
	BookingStatusCheckedOut BookingStatus = "Checked Out"
	BookingStatusCancelled  BookingStatus = "Cancelled"
)

// IsValid checks if the booking status is known
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusBooked, BookingStatusCheckedIn, BookingStatusCheckedOut, BookingStatusCancelled:
		return true
	}
	return false
}

// IsLive returns true for statuses that can occupy an apartment
func (s BookingStatus) IsLive() bool {
	return s == BookingStatusBooked || s == BookingStatusCheckedIn
}

// UserType is the kind of user a booking was made for
type UserType string

const (
	UserTypeOwner  UserType = "owner"
	UserTypeRenter UserType = "renter"
)

// Booking is a reservation of an apartment, owned by the bookings system
type Booking struct {
	ID          int64         `json:"id"`
	ApartmentID int64         `json:"apartment_id"`
	UserID      int64         `json:"user_id"`
	UserName    string        `json:"user_name,omitempty"`
	UserType    UserType      `json:"user_type"`
	ArrivalDate time.Time     `json:"arrival_date"`
	LeavingDate time.Time     `json:"leaving_date"`
	Status      BookingStatus `json:"status"`
}

// Covers reports whether now falls in [arrival, leaving). A booking whose leaving
// date is not after its arrival date covers nothing.
func (b Booking) Covers(now time.Time) bool {
	return !now.Before(b.ArrivalDate) && now.Before(b.LeavingDate)
}

// OccupiesAt reports whether the booking is live and covers now
func (b Booking) OccupiesAt(now time.Time) bool {
	return b.Status.IsLive() && b.Covers(now)
}
