package models

import (
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
)

// BookingModel is a stay of an owner or renter in an apartment
type BookingModel struct {
	BaseModel
	ApartmentID int64     `gorm:"not null;index"`
	UserID      int64     `gorm:"not null;index"`
	UserType    string    `gorm:"type:varchar(10);not null"`
	ArrivalDate time.Time `gorm:"not null"`
	LeavingDate time.Time `gorm:"not null"`
	Status      string    `gorm:"type:varchar(20);not null;default:'Booked'"`
	Notes       string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}

// ToDomain converts the persistence model to a domain Booking
func (m *BookingModel) ToDomain() occupancy.Booking {
	return occupancy.Booking{
		ID:          m.ID,
		ApartmentID: m.ApartmentID,
		UserID:      m.UserID,
		UserType:    occupancy.UserType(m.UserType),
		ArrivalDate: m.ArrivalDate.UTC(),
		LeavingDate: m.LeavingDate.UTC(),
		Status:      occupancy.BookingStatus(m.Status),
	}
}
