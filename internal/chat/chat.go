// Package chat carries the conversation between a customer and a provider
// about one booking. Messages are stored in PostgreSQL and fanned out to
// live subscribers through a Broker.
package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage   = errors.New("chat: message is empty")
	ErrMessageTooLong = errors.New("chat: message is too long")
	ErrBrokerClosed   = errors.New("chat: broker closed")
)

// MaxBodyLength caps a message, in runes.
const MaxBodyLength = 2000

// Message is one chat line.
type Message struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Channel names the pub/sub channel of a booking.
func Channel(bookingID uuid.UUID) string {
	return "chat:booking:" + bookingID.String()
}
