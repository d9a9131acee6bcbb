package chat

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/subhakaryam/subhakaryam/internal/booking"
	"github.com/subhakaryam/subhakaryam/pkg/sanitizer"
)

const (
	defaultHistory = 50
	maxHistory     = 200
)

// Participants resolves who may read and write a booking's conversation.
type Participants interface {
	Participant(ctx context.Context, bookingID, userID uuid.UUID) (*booking.Booking, error)
}

// Service implements booking conversations.
type Service struct {
	store        Store
	broker       Broker
	participants Participants
	logger       *slog.Logger
}

func NewService(store Store, broker Broker, participants Participants, log *slog.Logger) *Service {
	return &Service{store: store, broker: broker, participants: participants, logger: log}
}

// Send stores a message from senderID and publishes it to live subscribers.
// A failed publish is logged; the message is already saved.
func (s *Service) Send(ctx context.Context, bookingID, senderID uuid.UUID, body string) (*Message, error) {
	body = sanitizer.PlainText(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, ErrMessageTooLong
	}
	if _, err := s.participants.Participant(ctx, bookingID, senderID); err != nil {
		return nil, err
	}

	m := &Message{ID: uuid.New(), BookingID: bookingID, SenderID: senderID, Body: body}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	if err := s.broker.Publish(ctx, Channel(bookingID), *m); err != nil {
		s.logger.WarnContext(ctx, "failed to publish chat message",
			slog.String("booking_id", bookingID.String()),
			slog.Any("error", err),
		)
	}
	return m, nil
}

// History pages the conversation backwards from before, returning messages
// oldest first.
func (s *Service) History(ctx context.Context, bookingID, userID uuid.UUID, before time.Time, limit int) ([]Message, error) {
	if _, err := s.participants.Participant(ctx, bookingID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistory
	}
	return s.store.History(ctx, bookingID, before, min(limit, maxHistory))
}

// Subscribe streams new messages of the booking until ctx ends.
func (s *Service) Subscribe(ctx context.Context, bookingID, userID uuid.UUID) (<-chan Message, error) {
	if _, err := s.participants.Participant(ctx, bookingID, userID); err != nil {
		return nil, err
	}
	return s.broker.Subscribe(ctx, Channel(bookingID))
}
