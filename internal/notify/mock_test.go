package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/subhakaryam/subhakaryam/pkg/mailer"
)

// MockDirectory is a mock implementation of Directory.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) User(ctx context.Context, id uuid.UUID) (*Recipient, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*Recipient)
	return r, args.Error(1)
}

func (m *MockDirectory) Booking(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*BookingView)
	return b, args.Error(1)
}

func (m *MockDirectory) Payment(ctx context.Context, id uuid.UUID) (*PaymentView, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*PaymentView)
	return p, args.Error(1)
}

// outbox captures rendered emails.
type outbox struct {
	sent []*mailer.Email
	err  error
}

func (o *outbox) Send(_ context.Context, e *mailer.Email) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, e)
	return nil
}
