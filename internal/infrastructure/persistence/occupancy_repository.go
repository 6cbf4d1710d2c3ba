package persistence

import (
	"context"
	"fmt"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// BookingRepository implements occupancy.BookingRepository
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingRow struct {
	models.BookingModel
	UserName string
}

// FetchBookings returns every booking of the apartment ordered by arrival
func (r *BookingRepository) FetchBookings(ctx context.Context, apartmentID int64) ([]occupancy.Booking, error) {
	var rows []bookingRow
	err := scopeApartment(r.db.WithContext(ctx).Table("bookings AS b"), "b.apartment_id", apartmentID).
		Select("b.*, COALESCE(u.name, '') AS user_name").
		Joins("LEFT JOIN users u ON u.id = b.user_id").
		Order("b.arrival_date, b.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch bookings for apartment %d: %w", apartmentID, err)
	}

	bookings := make([]occupancy.Booking, len(rows))
	for i := range rows {
		b := rows[i].ToDomain()
		b.UserName = rows[i].UserName
		bookings[i] = b
	}
	return bookings, nil
}

// ApartmentRepository implements occupancy.ApartmentRepository and ledger.ApartmentDirectory
type ApartmentRepository struct {
	db *gorm.DB
}

// NewApartmentRepository creates a new apartment repository
func NewApartmentRepository(db *gorm.DB) *ApartmentRepository {
	return &ApartmentRepository{db: db}
}

// ListApartmentIDs returns every apartment id in ascending order
func (r *ApartmentRepository) ListApartmentIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.ApartmentModel{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list apartments: %w", err)
	}
	return ids, nil
}

// Exists reports whether the apartment is known
func (r *ApartmentRepository) Exists(ctx context.Context, apartmentID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ApartmentModel{}).Where("id = ?", apartmentID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("find apartment %d: %w", apartmentID, err)
	}
	return count > 0, nil
}

// OccupancyViewName is the materialized view maintained by the migrations
const OccupancyViewName = "apartment_occupancy_status"

// OccupancyViewRepository implements occupancy.StatusViewRepository on the materialized view
type OccupancyViewRepository struct {
	db *gorm.DB
}

// NewOccupancyViewRepository creates a new occupancy view repository
func NewOccupancyViewRepository(db *gorm.DB) *OccupancyViewRepository {
	return &OccupancyViewRepository{db: db}
}

// Refresh recomputes the view without blocking readers
func (r *OccupancyViewRepository) Refresh(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("REFRESH MATERIALIZED VIEW CONCURRENTLY " + OccupancyViewName).Error; err != nil {
		return fmt.Errorf("refresh %s: %w", OccupancyViewName, err)
	}
	return nil
}

// FindStatus reads the status the view computed for the apartment
func (r *OccupancyViewRepository) FindStatus(ctx context.Context, apartmentID int64) (occupancy.Status, error) {
	var statuses []string
	err := r.db.WithContext(ctx).
		Raw("SELECT status FROM "+OccupancyViewName+" WHERE apartment_id = ?", apartmentID).
		Scan(&statuses).Error
	if err != nil {
		return "", fmt.Errorf("find status for apartment %d: %w", apartmentID, err)
	}
	if len(statuses) == 0 {
		return "", shared.ErrNotFound.WithMessage(fmt.Sprintf("apartment %d not in %s", apartmentID, OccupancyViewName))
	}
	status := occupancy.Status(statuses[0])
	if !status.IsValid() {
		return "", fmt.Errorf("unknown status %q in %s", statuses[0], OccupancyViewName)
	}
	return status, nil
}
