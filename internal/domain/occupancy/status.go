package occupancy

import (
	"cmp"
	"time"
)

// Status is the derived occupancy state of an apartment
type Status string

const (
	StatusAvailable        Status = "Available"
	StatusBooked           Status = "Booked"
	StatusOccupiedByOwner  Status = "Occupied by Owner"
	StatusOccupiedByTenant Status = "Occupied by Tenant"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusOccupiedByOwner, StatusOccupiedByTenant:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Resolution is a resolved status together with the booking that decided it
type Resolution struct {
	Status  Status   `json:"status"`
	Booking *Booking `json:"booking,omitempty"`
}

// Resolve returns the occupancy status of an apartment at now
func Resolve(now time.Time, bookings []Booking) Status {
	return Decide(now, bookings).Status
}

// Decide resolves the occupancy status at now.
//
// Only live bookings with arrival <= now < leaving are considered. If any of them is
// still Booked the apartment is Booked, even when another booking is checked in.
// Otherwise the checked-in booking's user type picks the occupied label. Overlapping
// candidates are broken by the most recent arrival, then by the highest booking id.
func Decide(now time.Time, bookings []Booking) Resolution {
	var booked, checkedIn *Booking
	for i := range bookings {
		b := &bookings[i]
		if !b.OccupiesAt(now) {
			continue
		}
		switch b.Status {
		case BookingStatusBooked:
			booked = preferred(booked, b)
		case BookingStatusCheckedIn:
			checkedIn = preferred(checkedIn, b)
		}
	}

	switch {
	case booked != nil:
		return resolution(StatusBooked, booked)
	case checkedIn == nil:
		return Resolution{Status: StatusAvailable}
	case checkedIn.UserType == UserTypeOwner:
		return resolution(StatusOccupiedByOwner, checkedIn)
	default:
		return resolution(StatusOccupiedByTenant, checkedIn)
	}
}

func preferred(current, candidate *Booking) *Booking {
	if current == nil {
		return candidate
	}
	c := candidate.ArrivalDate.Compare(current.ArrivalDate)
	if c == 0 {
		c = cmp.Compare(candidate.ID, current.ID)
	}
	if c > 0 {
		return candidate
	}
	return current
}

func resolution(s Status, b *Booking) Resolution {
	chosen := *b
	return Resolution{Status: s, Booking: &chosen}
}

// NextTransition returns the earliest arrival or leaving instant after now among live
// bookings, which is the first moment the resolved status could change. ok is false
// when no live booking has a future boundary.
func NextTransition(now time.Time, bookings []Booking) (next time.Time, ok bool) {
	consider := func(t time.Time) {
		if t.After(now) && (!ok || t.Before(next)) {
			next, ok = t, true
		}
	}
	for _, b := range bookings {
		if !b.Status.IsLive() || !b.LeavingDate.After(b.ArrivalDate) {
			continue
		}
		consider(b.ArrivalDate)
		consider(b.LeavingDate)
	}
	return next, ok
}
