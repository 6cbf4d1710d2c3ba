//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/ledger"
	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/migration"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/persistence/models"
	"github.com/Apolo151/tourist-village-app-sub000/migrations"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// startPostgres runs a migrated PostgreSQL container and returns its DSN and a gorm handle
func startPostgres(t *testing.T) (string, *gorm.DB) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("village_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.NewFromFS(sqlDB, migrations.FS, ".", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	return dsn, db
}

func TestPostgres_LedgerSourcesAndOccupancyView(t *testing.T) {
	dsn, db := startPostgres(t)
	ctx := context.Background()
	f := seedVillage(t, db)

	listener := pq.NewListener(dsn, 10*time.Millisecond, time.Second, nil)
	require.NoError(t, listener.Listen("booking_changed"))
	t.Cleanup(func() { _ = listener.Close() })

	now := time.Now().UTC()
	stay := models.BookingModel{
		ApartmentID: f.neighbour.ID,
		UserID:      f.owner.ID,
		UserType:    "owner",
		ArrivalDate: now.Add(-time.Hour),
		LeavingDate: now.Add(48 * time.Hour),
		Status:      "Checked In",
	}
	require.NoError(t, db.Create(&stay).Error)

	t.Run("booking changes are notified with the apartment id", func(t *testing.T) {
		select {
		case n := <-listener.Notify:
			require.NotNil(t, n)
			assert.Equal(t, "booking_changed", n.Channel)
			assert.Equal(t, strconv.FormatInt(f.neighbour.ID, 10), n.Extra)
		case <-time.After(5 * time.Second):
			t.Fatal("no notification received")
		}
	})

	t.Run("view agrees with the resolver after a refresh", func(t *testing.T) {
		view := NewOccupancyViewRepository(db)
		require.NoError(t, view.Refresh(ctx))

		status, err := view.FindStatus(ctx, f.neighbour.ID)
		require.NoError(t, err)
		assert.Equal(t, occupancy.StatusOccupiedByOwner, status)

		bookings, err := NewBookingRepository(db).FetchBookings(ctx, f.neighbour.ID)
		require.NoError(t, err)
		assert.Equal(t, status, occupancy.Resolve(now, bookings))

		status, err = view.FindStatus(ctx, f.apartment.ID)
		require.NoError(t, err)
		assert.Equal(t, occupancy.StatusAvailable, status)
	})

	t.Run("payments read through the postgres dialect", func(t *testing.T) {
		require.NoError(t, db.Create(&models.PaymentModel{
			ApartmentID: f.apartment.ID, UserID: f.owner.ID, UserType: "owner", Amount: dec("1250.50"),
			Currency: "GBP", MethodID: f.bankMethod.ID, Date: day("2024-05-02"),
		}).Error)

		records, err := NewPaymentRepository(db).FetchPayments(ctx, f.apartment.ID, ledger.TransactionFilter{
			DateTo: ptr(day("2024-05-02")),
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "1250.50", records[0].Amount.Decimal.StringFixed(2))
		assert.Equal(t, "Bank transfer", records[0].Method)
	})
}
