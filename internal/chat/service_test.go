package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subhakaryam/subhakaryam/internal/booking"
	"github.com/subhakaryam/subhakaryam/pkg/logger"
)

func testBooking() *booking.Booking {
	return &booking.Booking{ID: uuid.New(), CustomerID: uuid.New(), ProviderUserID: uuid.New()}
}

func TestService_Send(t *testing.T) {
	t.Parallel()

	b := testBooking()
	store := &MockStore{}
	store.On("Create", mock.Anything, mock.MatchedBy(func(m *Message) bool {
		return m.BookingID == b.ID && m.SenderID == b.CustomerID && m.Body == "Can you bring marigolds?"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*Message).CreatedAt = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	}).Return(nil)

	broker := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	live, err := broker.Subscribe(ctx, Channel(b.ID))
	require.NoError(t, err)

	svc := NewService(store, broker, parties{booking: b}, logger.NewNope())
	m, err := svc.Send(context.Background(), b.ID, b.CustomerID, "  <p>Can you bring <b>marigolds</b>?</p> ")
	require.NoError(t, err)
	assert.Equal(t, "Can you bring marigolds?", m.Body)

	got, ok := receive(t, live)
	require.True(t, ok)
	assert.Equal(t, *m, got)
}

func TestService_Send_Rejections(t *testing.T) {
	t.Parallel()

	b := testBooking()
	tests := []struct {
		name    string
		sender  uuid.UUID
		booking uuid.UUID
		body    string
		wantErr error
	}{
		{"empty", b.CustomerID, b.ID, "   ", ErrEmptyMessage},
		{"markup only", b.CustomerID, b.ID, "<script>alert(1)</script>", ErrEmptyMessage},
		{"encoded markup only", b.CustomerID, b.ID, "&lt;script&gt;x&lt;/script&gt;", ErrEmptyMessage},
		{"too long", b.CustomerID, b.ID, strings.Repeat("న", MaxBodyLength+1), ErrMessageTooLong},
		{"outsider", uuid.New(), b.ID, "hello", booking.ErrNotParticipant},
		{"unknown booking", b.CustomerID, uuid.New(), "hello", booking.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &MockStore{}
			svc := NewService(store, NewMemoryBroker(), parties{booking: b}, logger.NewNope())
			_, err := svc.Send(context.Background(), tt.booking, tt.sender, tt.body)
			require.ErrorIs(t, err, tt.wantErr)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Send_MaxLengthInRunes(t *testing.T) {
	t.Parallel()

	b := testBooking()
	store := &MockStore{}
	store.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(store, NewMemoryBroker(), parties{booking: b}, logger.NewNope())

	_, err := svc.Send(context.Background(), b.ID, b.ProviderUserID, strings.Repeat("న", MaxBodyLength))
	require.NoError(t, err)
}

func TestService_Send_PublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	b := testBooking()
	store := &MockStore{}
	store.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(store, failingBroker{err: errors.New("redis down")}, parties{booking: b}, logger.NewNope())

	_, err := svc.Send(context.Background(), b.ID, b.ProviderUserID, "On my way")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestService_History(t *testing.T) {
	t.Parallel()

	b := testBooking()
	before := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	store := &MockStore{}
	store.On("History", mock.Anything, b.ID, time.Time{}, defaultHistory).Return([]Message{{Body: "a"}}, nil)
	store.On("History", mock.Anything, b.ID, before, maxHistory).Return([]Message{}, nil)
	svc := NewService(store, NewMemoryBroker(), parties{booking: b}, logger.NewNope())

	msgs, err := svc.History(context.Background(), b.ID, b.CustomerID, time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	_, err = svc.History(context.Background(), b.ID, b.ProviderUserID, before, 10_000)
	require.NoError(t, err)

	_, err = svc.History(context.Background(), b.ID, uuid.New(), time.Time{}, 0)
	require.ErrorIs(t, err, booking.ErrNotParticipant)
	store.AssertExpectations(t)
}

func TestService_Subscribe(t *testing.T) {
	t.Parallel()

	b := testBooking()
	broker := NewMemoryBroker()
	svc := NewService(&MockStore{}, broker, parties{booking: b}, logger.NewNope())

	_, err := svc.Subscribe(context.Background(), b.ID, uuid.New())
	require.ErrorIs(t, err, booking.ErrNotParticipant)
	assert.Zero(t, broker.Subscribers(Channel(b.ID)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err = svc.Subscribe(ctx, b.ID, b.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 1, broker.Subscribers(Channel(b.ID)))
}
