package ledger

import (
	"context"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/ledger"
	"github.com/stretchr/testify/mock"
)

// MockPaymentSource is a mock implementation of ledger.PaymentSource
type MockPaymentSource struct {
	mock.Mock
}

func (m *MockPaymentSource) FetchPayments(ctx context.Context, apartmentID int64, filter ledger.TransactionFilter) ([]ledger.PaymentRecord, error) {
	args := m.Called(ctx, apartmentID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.PaymentRecord), args.Error(1)
}

// MockServiceChargeSource is a mock implementation of ledger.ServiceChargeSource
type MockServiceChargeSource struct {
	mock.Mock
}

func (m *MockServiceChargeSource) FetchServiceCharges(ctx context.Context, apartmentID int64, filter ledger.TransactionFilter) ([]ledger.ServiceChargeRecord, error) {
	args := m.Called(ctx, apartmentID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.ServiceChargeRecord), args.Error(1)
}

// MockUtilityChargeSource is a mock implementation of ledger.UtilityChargeSource
type MockUtilityChargeSource struct {
	mock.Mock
}

func (m *MockUtilityChargeSource) FetchUtilityCharges(ctx context.Context, apartmentID int64, filter ledger.TransactionFilter) ([]ledger.UtilityChargeRecord, error) {
	args := m.Called(ctx, apartmentID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.UtilityChargeRecord), args.Error(1)
}

// MockApartmentDirectory is a mock implementation of ledger.ApartmentDirectory
type MockApartmentDirectory struct {
	mock.Mock
}

func (m *MockApartmentDirectory) Exists(ctx context.Context, apartmentID int64) (bool, error) {
	args := m.Called(ctx, apartmentID)
	return args.Bool(0), args.Error(1)
}
