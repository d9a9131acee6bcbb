// Package booking lets customers book providers for an event date and moves
// each booking through its lifecycle.
package booking

import (
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrInvalidDate       = errors.New("booking: event date must be YYYY-MM-DD")
	ErrEventInPast       = errors.New("booking: event date is in the past")
	ErrEventNotReached   = errors.New("booking: event date has not been reached")
	ErrNotParticipant    = errors.New("booking: not a participant")
	ErrOwnProfile        = errors.New("booking: providers cannot book themselves")
	ErrAmountTooLow      = errors.New("booking: amount must be positive and at least the provider's base price")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusDeclined, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Booking is a customer's request for a provider on an event date. The
// amount is in paise.
type Booking struct {
	ID             uuid.UUID `json:"id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	ProviderID     uuid.UUID `json:"provider_id"`
	ProviderUserID uuid.UUID `json:"-"`
	EventDate      time.Time `json:"-"`
	EventType      string    `json:"event_type"`
	Location       string    `json:"location"`
	Notes          string    `json:"notes,omitempty"`
	Amount         int64     `json:"amount"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Involves reports whether userID is the customer or the provider.
func (b *Booking) Involves(userID uuid.UUID) bool {
	return userID == b.CustomerID || userID == b.ProviderUserID
}

// MarshalJSON writes the event date as YYYY-MM-DD.
func (b Booking) MarshalJSON() ([]byte, error) {
	type plain Booking
	return json.Marshal(struct {
		plain
		EventDate string `json:"event_date"`
	}{plain: plain(b), EventDate: b.EventDate.Format(dateLayout)})
}

const dateLayout = time.DateOnly

// eventZone is the calendar event dates are written in.
var eventZone = time.FixedZone("IST", 5*60*60+30*60)

// today returns the calendar date of now in eventZone as UTC midnight, the
// same shape event dates are stored in.
func today(now time.Time) time.Time {
	y, m, d := now.In(eventZone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
