package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/subhakaryam/subhakaryam/internal/booking"
)

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, msg *Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockStore) History(ctx context.Context, bookingID uuid.UUID, before time.Time, limit int) ([]Message, error) {
	args := m.Called(ctx, bookingID, before, limit)
	list, _ := args.Get(0).([]Message)
	return list, args.Error(1)
}

// parties admits the customer and provider of a single booking.
type parties struct {
	booking *booking.Booking
}

func (p parties) Participant(_ context.Context, bookingID, userID uuid.UUID) (*booking.Booking, error) {
	if p.booking == nil || bookingID != p.booking.ID {
		return nil, booking.ErrNotFound
	}
	if !p.booking.Involves(userID) {
		return nil, booking.ErrNotParticipant
	}
	return p.booking, nil
}

type failingBroker struct{ err error }

func (b failingBroker) Publish(context.Context, string, Message) error { return b.err }

func (b failingBroker) Subscribe(context.Context, string) (<-chan Message, error) {
	return nil, b.err
}
