package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepository_FetchBookings(t *testing.T) {
	db := setupVillageTestDB(t)
	f := seedVillage(t, db)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	ownerStay := models.BookingModel{
		ApartmentID: f.apartment.ID,
		UserID:      f.owner.ID,
		UserType:    "owner",
		ArrivalDate: day("2024-07-01"),
		LeavingDate: day("2024-07-15"),
		Status:      "Booked",
	}
	require.NoError(t, db.Create(&ownerStay).Error)
	require.NoError(t, db.Create(&models.BookingModel{
		ApartmentID: f.neighbour.ID, UserID: f.guest.ID, UserType: "renter",
		ArrivalDate: day("2024-05-01"), LeavingDate: day("2024-05-03"), Status: "Booked",
	}).Error)

	bookings, err := repo.FetchBookings(ctx, f.apartment.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	assert.Equal(t, f.guestStay.ID, bookings[0].ID)
	assert.Equal(t, occupancy.UserTypeRenter, bookings[0].UserType)
	assert.Equal(t, occupancy.BookingStatusCheckedOut, bookings[0].Status)
	assert.Equal(t, "Tom Baker", bookings[0].UserName)

	assert.Equal(t, ownerStay.ID, bookings[1].ID)
	assert.Equal(t, occupancy.UserTypeOwner, bookings[1].UserType)
	assert.Equal(t, "Mona Hassan", bookings[1].UserName)
	assert.True(t, bookings[1].ArrivalDate.Equal(day("2024-07-01")))

	t.Run("unknown apartment has no bookings", func(t *testing.T) {
		bookings, err := repo.FetchBookings(ctx, 999)
		require.NoError(t, err)
		assert.Empty(t, bookings)
	})
}

func TestApartmentRepository(t *testing.T) {
	db := setupVillageTestDB(t)
	f := seedVillage(t, db)
	repo := NewApartmentRepository(db)
	ctx := context.Background()

	t.Run("lists every apartment in id order", func(t *testing.T) {
		ids, err := repo.ListApartmentIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{f.apartment.ID, f.neighbour.ID}, ids)
	})

	t.Run("reports existence", func(t *testing.T) {
		ok, err := repo.Exists(ctx, f.apartment.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, 999)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOccupancyViewRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes the view concurrently", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(`REFRESH MATERIALIZED VIEW CONCURRENTLY apartment_occupancy_status`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewOccupancyViewRepository(db.DB)
		require.NoError(t, repo.Refresh(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps refresh failures", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(`REFRESH MATERIALIZED VIEW`).WillReturnError(assert.AnError)

		err := NewOccupancyViewRepository(db.DB).Refresh(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "apartment_occupancy_status")
	})

	t.Run("finds the computed status", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT status FROM apartment_occupancy_status WHERE apartment_id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Occupied by Tenant"))

		status, err := NewOccupancyViewRepository(db.DB).FindStatus(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, occupancy.StatusOccupiedByTenant, status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing apartment is not found", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT status FROM apartment_occupancy_status`).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))

		_, err := NewOccupancyViewRepository(db.DB).FindStatus(ctx, 8)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT status FROM apartment_occupancy_status`).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Haunted"))

		_, err := NewOccupancyViewRepository(db.DB).FindStatus(ctx, 9)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Haunted")
	})
}
