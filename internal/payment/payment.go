// Package payment holds customer money in escrow until the service is
// delivered, then releases the provider's payout net of platform commission.
//
// A payment is created pending when the provider confirms a booking. The
// gateway webhook moves it to held. Held payments are released automatically
// once the hold window after the event has passed and the booking is
// completed, or earlier by an admin. A customer can dispute a held payment;
// an admin resolves the dispute by releasing or refunding.
//
// Every transition is a guarded UPDATE on the expected current status, so a
// webhook retry racing a release cannot apply twice.
package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("payment: not found")
	ErrAlreadyExists     = errors.New("payment: booking already has a payment")
	ErrInvalidTransition = errors.New("payment: invalid status transition")
	ErrInvalidSignature  = errors.New("payment: invalid webhook signature")
	ErrInvalidEvent      = errors.New("payment: malformed webhook event")
	ErrNotCustomer       = errors.New("payment: only the booking's customer may do this")
	ErrNotParticipant    = errors.New("payment: not a participant of the booking")
	ErrReasonRequired    = errors.New("payment: dispute reason is required")
	ErrInvalidOutcome    = errors.New("payment: outcome must be released or refunded")
)

// Status is the escrow state of a payment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusHeld     Status = "held"
	StatusReleased Status = "released"
	StatusDisputed Status = "disputed"
	StatusRefunded Status = "refunded"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusHeld, StatusReleased, StatusDisputed, StatusRefunded:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPending:  {StatusHeld},
	StatusHeld:     {StatusReleased, StatusDisputed},
	StatusDisputed: {StatusReleased, StatusRefunded},
}

// CanTransition reports whether a payment may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// sources lists every status that may move to to.
func sources(to Status) []Status {
	var out []Status
	for _, from := range []Status{StatusPending, StatusHeld, StatusDisputed} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// Payment is the escrow record of one booking. Money is in paise.
type Payment struct {
	ID            uuid.UUID  `json:"id"`
	BookingID     uuid.UUID  `json:"booking_id"`
	Amount        int64      `json:"amount"`
	Commission    int64      `json:"commission"`
	Payout        int64      `json:"payout"`
	Status        Status     `json:"status"`
	GatewayRef    string     `json:"gateway_ref,omitempty"`
	HeldAt        *time.Time `json:"held_at,omitempty"`
	ReleaseAfter  *time.Time `json:"release_after,omitempty"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	DisputeReason string     `json:"dispute_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BookingRef is the part of a booking escrow decisions depend on.
type BookingRef struct {
	ID             uuid.UUID
	CustomerID     uuid.UUID
	ProviderUserID uuid.UUID
	EventDate      time.Time
	Status         string
}

// Config holds escrow settings.
type Config struct {
	CommissionRateBps int           `env:"COMMISSION_RATE_BPS" envDefault:"1000"`
	WebhookSecret     string        `env:"PAYMENT_WEBHOOK_SECRET,required"`
	HoldWindow        time.Duration `env:"PAYMENT_HOLD_WINDOW" envDefault:"48h"`
}

const bpsDenominator = 10_000

// Commission splits amount into the platform commission and the provider
// payout. The commission is rounded half-up to the paisa.
func Commission(amount int64, rateBps int) (commission, payout int64) {
	if amount <= 0 || rateBps <= 0 {
		return 0, max(amount, 0)
	}
	rate := int64(min(rateBps, bpsDenominator))
	commission = (amount*rate + bpsDenominator/2) / bpsDenominator
	return commission, amount - commission
}
