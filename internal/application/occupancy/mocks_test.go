package occupancy

import (
	"context"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/occupancy"
	"github.com/stretchr/testify/mock"
)

// MockBookingRepository is a mock implementation of occupancy.BookingRepository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) FetchBookings(ctx context.Context, apartmentID int64) ([]occupancy.Booking, error) {
	args := m.Called(ctx, apartmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]occupancy.Booking), args.Error(1)
}

// MockProjectionCache is a mock implementation of occupancy.ProjectionCache
type MockProjectionCache struct {
	mock.Mock
}

func (m *MockProjectionCache) Get(ctx context.Context, apartmentID int64) (occupancy.Projection, bool, error) {
	args := m.Called(ctx, apartmentID)
	return args.Get(0).(occupancy.Projection), args.Bool(1), args.Error(2)
}

func (m *MockProjectionCache) Set(ctx context.Context, p occupancy.Projection) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectionCache) Delete(ctx context.Context, apartmentID int64) error {
	args := m.Called(ctx, apartmentID)
	return args.Error(0)
}

// MockStatusViewRepository is a mock implementation of occupancy.StatusViewRepository
type MockStatusViewRepository struct {
	mock.Mock
}

func (m *MockStatusViewRepository) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatusViewRepository) FindStatus(ctx context.Context, apartmentID int64) (occupancy.Status, error) {
	args := m.Called(ctx, apartmentID)
	return args.Get(0).(occupancy.Status), args.Error(1)
}
