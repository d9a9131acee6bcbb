package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store. WithTx returns the mock itself.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) WithTx(pgx.Tx) Store { return m }

func (m *MockStore) Create(ctx context.Context, p *Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockStore) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*Payment)
	return p, args.Error(1)
}

func (m *MockStore) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	args := m.Called(ctx, bookingID)
	p, _ := args.Get(0).(*Payment)
	return p, args.Error(1)
}

func (m *MockStore) List(ctx context.Context, status Status, limit, offset int) ([]Payment, error) {
	args := m.Called(ctx, status, limit, offset)
	list, _ := args.Get(0).([]Payment)
	return list, args.Error(1)
}

func (m *MockStore) Booking(ctx context.Context, bookingID uuid.UUID) (*BookingRef, error) {
	args := m.Called(ctx, bookingID)
	b, _ := args.Get(0).(*BookingRef)
	return b, args.Error(1)
}

func (m *MockStore) MarkHeld(ctx context.Context, id uuid.UUID, gatewayRef string, heldAt, releaseAfter time.Time) (*Payment, error) {
	args := m.Called(ctx, id, gatewayRef, heldAt, releaseAfter)
	p, _ := args.Get(0).(*Payment)
	return p, args.Error(1)
}

func (m *MockStore) Transition(ctx context.Context, id uuid.UUID, from []Status, to Status, reason string) (*Payment, error) {
	args := m.Called(ctx, id, from, to, reason)
	p, _ := args.Get(0).(*Payment)
	return p, args.Error(1)
}

func (m *MockStore) DueForRelease(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, now, limit)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

// MockRecorder is a mock implementation of Recorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) IncrementPayments(status string) {
	m.Called(status)
}
