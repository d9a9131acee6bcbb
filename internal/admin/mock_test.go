package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/internal/provider"
)

// MockProviders is a mock implementation of Providers.
type MockProviders struct {
	mock.Mock
}

func (m *MockProviders) List(ctx context.Context, f provider.Filter) ([]provider.Provider, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]provider.Provider)
	return list, args.Error(1)
}

func (m *MockProviders) Verify(ctx context.Context, providerID uuid.UUID, verified bool) (*provider.Provider, error) {
	args := m.Called(ctx, providerID, verified)
	p, _ := args.Get(0).(*provider.Provider)
	return p, args.Error(1)
}

// MockPayments is a mock implementation of Payments.
type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) List(ctx context.Context, status payment.Status, limit, offset int) ([]payment.Payment, error) {
	args := m.Called(ctx, status, limit, offset)
	list, _ := args.Get(0).([]payment.Payment)
	return list, args.Error(1)
}

func (m *MockPayments) Release(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(*payment.Payment)
	return p, args.Error(1)
}

func (m *MockPayments) Resolve(ctx context.Context, paymentID uuid.UUID, outcome payment.Status) (*payment.Payment, error) {
	args := m.Called(ctx, paymentID, outcome)
	p, _ := args.Get(0).(*payment.Payment)
	return p, args.Error(1)
}
