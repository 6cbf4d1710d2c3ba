package persistence

import (
	"testing"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupVillageTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection would otherwise get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// villageFixture is a village with two apartments, an owner and a guest
type villageFixture struct {
	village    models.VillageModel
	apartment  models.ApartmentModel
	neighbour  models.ApartmentModel
	owner      models.UserModel
	guest      models.UserModel
	guestStay  models.BookingModel
	bankMethod models.PaymentMethodModel
}

func seedVillage(t *testing.T, db *gorm.DB) villageFixture {
	f := villageFixture{
		village: models.VillageModel{
			Name:             "Sea View",
			WaterPrice:       decimal.RequireFromString("2.50"),
			ElectricityPrice: decimal.RequireFromString("1.75"),
			Phases:           2,
		},
		owner:      models.UserModel{Name: "Mona Hassan", Email: "mona@example.com", Role: "owner"},
		guest:      models.UserModel{Name: "Tom Baker", Email: "tom@example.com", Role: "renter"},
		bankMethod: models.PaymentMethodModel{Name: "Bank transfer"},
	}
	require.NoError(t, db.Create(&f.village).Error)
	require.NoError(t, db.Create(&f.owner).Error)
	require.NoError(t, db.Create(&f.guest).Error)
	require.NoError(t, db.Create(&f.bankMethod).Error)

	f.apartment = models.ApartmentModel{Name: "A-101", VillageID: f.village.ID, Phase: 1, OwnerID: f.owner.ID}
	f.neighbour = models.ApartmentModel{Name: "A-102", VillageID: f.village.ID, Phase: 1, OwnerID: f.owner.ID}
	require.NoError(t, db.Create(&f.apartment).Error)
	require.NoError(t, db.Create(&f.neighbour).Error)

	f.guestStay = models.BookingModel{
		ApartmentID: f.apartment.ID,
		UserID:      f.guest.ID,
		UserType:    "renter",
		ArrivalDate: day("2024-03-01"),
		LeavingDate: day("2024-03-10"),
		Status:      "Checked Out",
	}
	require.NoError(t, db.Create(&f.guestStay).Error)
	return f
}
