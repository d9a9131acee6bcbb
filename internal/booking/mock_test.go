package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/internal/provider"
)

// MockStore is a mock implementation of Store. WithTx returns the mock itself.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) WithTx(pgx.Tx) Store { return m }

func (m *MockStore) Create(ctx context.Context, b *Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockStore) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*Booking)
	return b, args.Error(1)
}

func (m *MockStore) ListForCustomer(ctx context.Context, customerID uuid.UUID, status Status, limit, offset int) ([]Booking, error) {
	args := m.Called(ctx, customerID, status, limit, offset)
	list, _ := args.Get(0).([]Booking)
	return list, args.Error(1)
}

func (m *MockStore) ListForProvider(ctx context.Context, providerID uuid.UUID, status Status, limit, offset int) ([]Booking, error) {
	args := m.Called(ctx, providerID, status, limit, offset)
	list, _ := args.Get(0).([]Booking)
	return list, args.Error(1)
}

func (m *MockStore) Transition(ctx context.Context, id uuid.UUID, from []Status, to Status) (*Booking, error) {
	args := m.Called(ctx, id, from, to)
	b, _ := args.Get(0).(*Booking)
	return b, args.Error(1)
}

// MockProviders is a mock implementation of Providers.
type MockProviders struct {
	mock.Mock
}

func (m *MockProviders) GetByID(ctx context.Context, id uuid.UUID) (*provider.Provider, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*provider.Provider)
	return p, args.Error(1)
}

func (m *MockProviders) GetByUserID(ctx context.Context, userID uuid.UUID) (*provider.Provider, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*provider.Provider)
	return p, args.Error(1)
}

// MockPayments is a mock implementation of Payments.
type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) CreateForBooking(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, amount int64) (*payment.Payment, error) {
	args := m.Called(ctx, tx, bookingID, amount)
	p, _ := args.Get(0).(*payment.Payment)
	return p, args.Error(1)
}

type countingRecorder struct{ created int }

func (r *countingRecorder) IncrementBookingsCreated() { r.created++ }
