package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/ledger"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestPaymentRepository_FetchPayments(t *testing.T) {
	db := setupVillageTestDB(t)
	f := seedVillage(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	payments := []models.PaymentModel{
		{ApartmentID: f.apartment.ID, UserID: f.owner.ID, UserType: "owner", Amount: dec("5000"), Currency: "EGP",
			MethodID: f.bankMethod.ID, Date: day("2024-03-10"), Description: "March dues"},
		{ApartmentID: f.apartment.ID, BookingID: &f.guestStay.ID, UserID: f.guest.ID, UserType: "renter", Amount: dec("200"),
			Currency: "GBP", MethodID: f.bankMethod.ID, Date: day("2024-03-15").Add(10 * time.Hour)},
		{ApartmentID: f.neighbour.ID, UserID: f.owner.ID, UserType: "owner", Amount: dec("100"), Currency: "EGP",
			MethodID: f.bankMethod.ID, Date: day("2024-03-11")},
		{ApartmentID: f.apartment.ID, UserID: f.owner.ID, UserType: "owner", Currency: "EGP",
			MethodID: f.bankMethod.ID, Date: day("2024-04-01")},
	}
	for i := range payments {
		require.NoError(t, db.Create(&payments[i]).Error)
	}

	t.Run("owner payments only by default", func(t *testing.T) {
		records, err := repo.FetchPayments(ctx, f.apartment.ID, ledger.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, records, 2)

		first := records[0]
		assert.Equal(t, payments[0].ID, first.ID)
		assert.Equal(t, ledger.PayerOwner, first.PayerType)
		assert.Equal(t, "Mona Hassan", first.PayerName)
		assert.Equal(t, "Bank transfer", first.Method)
		assert.Equal(t, "March dues", first.Description)
		assert.Equal(t, "5000.00", first.Amount.Decimal.StringFixed(2))
		assert.True(t, first.Date.Equal(day("2024-03-10")))

		assert.False(t, records[1].Amount.Valid, "missing amount must stay missing")
	})

	t.Run("renter payments when requested", func(t *testing.T) {
		records, err := repo.FetchPayments(ctx, f.apartment.ID, ledger.TransactionFilter{IncludeRenterTransactions: true})
		require.NoError(t, err)
		require.Len(t, records, 3)

		renter := records[1]
		assert.Equal(t, ledger.PayerRenter, renter.PayerType)
		assert.Equal(t, "Tom Baker", renter.PayerName)
		require.NotNil(t, renter.BookingID)
		assert.Equal(t, f.guestStay.ID, *renter.BookingID)
	})

	t.Run("date range includes the whole end day", func(t *testing.T) {
		records, err := repo.FetchPayments(ctx, f.apartment.ID, ledger.TransactionFilter{
			DateFrom:                  ptr(day("2024-03-12")),
			DateTo:                    ptr(day("2024-03-15")),
			IncludeRenterTransactions: true,
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, payments[1].ID, records[0].ID)
	})

	t.Run("non-positive apartment id panics", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = repo.FetchPayments(ctx, 0, ledger.TransactionFilter{})
		})
	})
}

func TestServiceChargeRepository_FetchServiceCharges(t *testing.T) {
	db := setupVillageTestDB(t)
	f := seedVillage(t, db)
	repo := NewServiceChargeRepository(db)
	ctx := context.Background()

	pool := models.ServiceTypeModel{Name: "pool cleaning", Cost: dec("1200"), Currency: "EGP"}
	garden := models.ServiceTypeModel{Name: "gardening", Cost: dec("300"), Currency: "EGP"}
	transfer := models.ServiceTypeModel{Name: "airport transfer", Currency: "GBP"}
	for _, st := range []*models.ServiceTypeModel{&pool, &garden, &transfer} {
		require.NoError(t, db.Create(st).Error)
	}
	require.NoError(t, db.Create(&models.ServiceTypeVillagePriceModel{
		ServiceTypeID: garden.ID, VillageID: f.village.ID, Cost: decimal.RequireFromString("250"), Currency: "GBP",
	}).Error)

	requests := []models.ServiceRequestModel{
		{TypeID: pool.ID, ApartmentID: f.apartment.ID, RequesterID: f.owner.ID, WhoPays: "owner",
			DateCreated: day("2024-03-01"), DateAction: ptr(day("2024-03-20"))},
		{TypeID: garden.ID, ApartmentID: f.apartment.ID, RequesterID: f.owner.ID, WhoPays: "company",
			DateCreated: day("2024-03-05")},
		{TypeID: pool.ID, ApartmentID: f.apartment.ID, BookingID: &f.guestStay.ID, RequesterID: f.guest.ID, WhoPays: "renter",
			Cost: dec("900"), DateCreated: day("2024-03-06")},
		{TypeID: transfer.ID, ApartmentID: f.apartment.ID, RequesterID: f.owner.ID, WhoPays: "owner",
			DateCreated: day("2024-03-08"), Notes: "late flight"},
	}
	for i := range requests {
		require.NoError(t, db.Create(&requests[i]).Error)
	}

	t.Run("resolves prices owner and company charges", func(t *testing.T) {
		records, err := repo.FetchServiceCharges(ctx, f.apartment.ID, ledger.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, records, 3)

		byID := make(map[int64]ledger.ServiceChargeRecord, len(records))
		for _, r := range records {
			byID[r.ID] = r
		}

		catalog := byID[requests[0].ID]
		assert.Equal(t, "pool cleaning", catalog.ServiceTypeName)
		assert.Equal(t, "1200.00", catalog.Cost.Decimal.StringFixed(2))
		assert.Equal(t, "EGP", catalog.Currency)
		assert.Equal(t, "Mona Hassan", catalog.RequesterName)
		require.NotNil(t, catalog.ActionDate)
		assert.True(t, catalog.ActionDate.Equal(day("2024-03-20")))

		village := byID[requests[1].ID]
		assert.Equal(t, ledger.PayerCompany, village.WhoPays)
		assert.Equal(t, "250.00", village.Cost.Decimal.StringFixed(2))
		assert.Equal(t, "GBP", village.Currency)

		unpriced := byID[requests[3].ID]
		assert.False(t, unpriced.Cost.Valid)
		assert.Equal(t, "GBP", unpriced.Currency)
		assert.Equal(t, "late flight", unpriced.Notes)
	})

	t.Run("request override wins and keeps the catalog currency", func(t *testing.T) {
		records, err := repo.FetchServiceCharges(ctx, f.apartment.ID, ledger.TransactionFilter{IncludeRenterTransactions: true})
		require.NoError(t, err)
		require.Len(t, records, 4)

		var override ledger.ServiceChargeRecord
		for _, r := range records {
			if r.ID == requests[2].ID {
				override = r
			}
		}
		assert.Equal(t, ledger.PayerRenter, override.WhoPays)
		assert.Equal(t, "900.00", override.Cost.Decimal.StringFixed(2))
		assert.Equal(t, "EGP", override.Currency)
		require.NotNil(t, override.BookingID)
	})

	t.Run("filters on the action date when present", func(t *testing.T) {
		records, err := repo.FetchServiceCharges(ctx, f.apartment.ID, ledger.TransactionFilter{
			DateFrom: ptr(day("2024-03-15")),
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, requests[0].ID, records[0].ID)
	})
}

func TestUtilityChargeRepository_FetchUtilityCharges(t *testing.T) {
	db := setupVillageTestDB(t)
	f := seedVillage(t, db)
	repo := NewUtilityChargeRepository(db)
	ctx := context.Background()

	readings := []models.UtilityReadingModel{
		{ApartmentID: f.apartment.ID, WhoPays: "owner", CreatedBy: f.owner.ID,
			WaterStartReading: dec("100"), WaterEndReading: dec("110"),
			ElectricityStartReading: dec("500"), ElectricityEndReading: dec("500"),
			StartDate: day("2024-02-01"), EndDate: day("2024-02-29")},
		{ApartmentID: f.apartment.ID, BookingID: &f.guestStay.ID, WhoPays: "renter", CreatedBy: f.owner.ID,
			ElectricityStartReading: dec("200"), ElectricityEndReading: dec("180"),
			StartDate: day("2024-03-01"), EndDate: day("2024-03-10")},
	}
	for i := range readings {
		require.NoError(t, db.Create(&readings[i]).Error)
	}

	t.Run("prices the delta and skips unchanged meters", func(t *testing.T) {
		records, err := repo.FetchUtilityCharges(ctx, f.apartment.ID, ledger.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, records, 1)

		water := records[0]
		assert.Equal(t, readings[0].ID, water.ReadingID)
		assert.Equal(t, ledger.UtilityWater, water.Utility)
		assert.Equal(t, "25.00", water.Cost.Decimal.StringFixed(2))
		assert.Empty(t, water.Currency)
		assert.Equal(t, f.owner.ID, water.PayerID)
		assert.Equal(t, "Mona Hassan", water.PayerName)
		assert.True(t, water.EndDate.Equal(day("2024-02-29")))
	})

	t.Run("negative deltas are passed through", func(t *testing.T) {
		records, err := repo.FetchUtilityCharges(ctx, f.apartment.ID, ledger.TransactionFilter{IncludeRenterTransactions: true})
		require.NoError(t, err)
		require.Len(t, records, 2)

		electricity := records[1]
		assert.Equal(t, ledger.UtilityElectricity, electricity.Utility)
		assert.Equal(t, "-35.00", electricity.Cost.Decimal.StringFixed(2))
		assert.Equal(t, f.guest.ID, electricity.PayerID)
		assert.Equal(t, "Tom Baker", electricity.PayerName)

		_, err = ledger.NormalizeUtilityCharge(electricity)
		assert.Error(t, err)
	})
}

func TestUtilityReadingRow_Charge(t *testing.T) {
	row := utilityReadingRow{ID: 4, ApartmentID: 9, WhoPays: "company", StartDate: day("2024-01-01"), EndDate: day("2024-01-31")}

	t.Run("missing end reading yields no charge", func(t *testing.T) {
		_, ok := row.charge(ledger.UtilityWater, dec("10"), decimal.NullDecimal{}, dec("2"))
		assert.False(t, ok)
	})

	t.Run("missing unit price yields a charge without cost", func(t *testing.T) {
		rec, ok := row.charge(ledger.UtilityWater, dec("10"), dec("12"), decimal.NullDecimal{})
		require.True(t, ok)
		assert.False(t, rec.Cost.Valid)
		assert.Zero(t, rec.PayerID)
	})

	t.Run("rounds half up to cents", func(t *testing.T) {
		rec, ok := row.charge(ledger.UtilityElectricity, dec("0"), dec("1.5"), dec("0.333"))
		require.True(t, ok)
		assert.Equal(t, "0.50", rec.Cost.Decimal.StringFixed(2))
	})
}
