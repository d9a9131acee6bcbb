package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/internal/provider"
	"github.com/subhakaryam/subhakaryam/pkg/db"
	"github.com/subhakaryam/subhakaryam/pkg/job"
	"github.com/subhakaryam/subhakaryam/pkg/sanitizer"
)

const (
	TaskNotifyBookingRequested = "notify_booking_requested"
	TaskNotifyBookingConfirmed = "notify_booking_confirmed"
)

// NotifyPayload is the payload of the booking notification tasks.
type NotifyPayload struct {
	BookingID uuid.UUID `json:"booking_id"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Providers looks up provider profiles.
type Providers interface {
	GetByID(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*provider.Provider, error)
}

// Payments opens the escrow record of a confirmed booking.
type Payments interface {
	CreateForBooking(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, amount int64) (*payment.Payment, error)
}

// Recorder counts created bookings.
type Recorder interface {
	IncrementBookingsCreated()
}

// CreateInput is a booking request.
type CreateInput struct {
	ProviderID uuid.UUID `json:"provider_id" validate:"required"`
	EventDate  string    `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventType  string    `json:"event_type" validate:"required,max=80"`
	Location   string    `json:"location" validate:"required,max=300"`
	Notes      string    `json:"notes" validate:"max=2000"`
	// Amount raises the price above the provider's base price, for add-ons
	// agreed in advance. It can never go below the base price.
	Amount *int64 `json:"amount" validate:"omitempty,gt=0"`
}

// Service implements bookings.
type Service struct {
	store     Store
	providers Providers
	payments  Payments
	jobs      job.Dispatcher
	tx        db.TxRunner
	metrics   Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store Store, providers Providers, payments Payments, jobs job.Dispatcher, tx db.TxRunner, metrics Recorder, log *slog.Logger) *Service {
	return &Service{
		store:     store,
		providers: providers,
		payments:  payments,
		jobs:      jobs,
		tx:        tx,
		metrics:   metrics,
		logger:    log,
		now:       time.Now,
	}
}

// Create books a provider for customerID. The provider is notified through
// a job written in the same transaction as the booking.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, in CreateInput) (*Booking, error) {
	eventDate, err := time.Parse(dateLayout, in.EventDate)
	if err != nil {
		return nil, errors.Join(ErrInvalidDate, err)
	}
	if eventDate.Before(today(s.now())) {
		return nil, ErrEventInPast
	}

	p, err := s.providers.GetByID(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if p.UserID == customerID {
		return nil, ErrOwnProfile
	}

	amount := p.BasePrice
	if in.Amount != nil {
		if *in.Amount <= 0 || *in.Amount < p.BasePrice {
			return nil, ErrAmountTooLow
		}
		amount = *in.Amount
	}

	b := &Booking{
		ID:             uuid.New(),
		CustomerID:     customerID,
		ProviderID:     p.ID,
		ProviderUserID: p.UserID,
		EventDate:      eventDate,
		EventType:      sanitizer.PlainText(in.EventType),
		Location:       sanitizer.PlainText(in.Location),
		Notes:          sanitizer.PlainText(in.Notes),
		Amount:         amount,
		Status:         StatusPending,
	}

	err = s.tx(ctx, func(tx pgx.Tx) error {
		if err := s.store.WithTx(tx).Create(ctx, b); err != nil {
			return err
		}
		return s.jobs.EnqueueTx(ctx, tx, TaskNotifyBookingRequested, NotifyPayload{BookingID: b.ID})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementBookingsCreated()
	}
	s.logger.InfoContext(ctx, "booking created",
		slog.String("booking_id", b.ID.String()),
		slog.String("provider_id", b.ProviderID.String()),
	)
	return b, nil
}

// Get returns a booking to one of its parties. Admins see every booking.
func (s *Service) Get(ctx context.Context, bookingID, userID uuid.UUID, admin bool) (*Booking, error) {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !admin && !b.Involves(userID) {
		return nil, ErrNotParticipant
	}
	return b, nil
}

// Participant returns the booking if userID is one of its parties.
func (s *Service) Participant(ctx context.Context, bookingID, userID uuid.UUID) (*Booking, error) {
	return s.Get(ctx, bookingID, userID, false)
}

// ListForCustomer pages the bookings made by customerID.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, status Status, limit, offset int) ([]Booking, error) {
	limit, offset = page(limit, offset)
	return s.store.ListForCustomer(ctx, customerID, status, limit, offset)
}

// ListForProvider pages the bookings received by the profile of userID.
func (s *Service) ListForProvider(ctx context.Context, userID uuid.UUID, status Status, limit, offset int) ([]Booking, error) {
	p, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit, offset = page(limit, offset)
	return s.store.ListForProvider(ctx, p.ID, status, limit, offset)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return min(limit, maxLimit), max(offset, 0)
}

// Confirm accepts a pending booking, opens its payment and notifies the
// customer, all in one transaction.
func (s *Service) Confirm(ctx context.Context, bookingID, providerUserID uuid.UUID) (*Booking, error) {
	b, err := s.ownedByProvider(ctx, bookingID, providerUserID, StatusConfirmed)
	if err != nil {
		return nil, err
	}

	var out *Booking
	err = s.tx(ctx, func(tx pgx.Tx) error {
		updated, err := s.store.WithTx(tx).Transition(ctx, b.ID, []Status{StatusPending}, StatusConfirmed)
		if err != nil {
			return err
		}
		if _, err := s.payments.CreateForBooking(ctx, tx, b.ID, b.Amount); err != nil {
			return err
		}
		out = updated
		return s.jobs.EnqueueTx(ctx, tx, TaskNotifyBookingConfirmed, NotifyPayload{BookingID: b.ID})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Decline rejects a pending booking.
func (s *Service) Decline(ctx context.Context, bookingID, providerUserID uuid.UUID) (*Booking, error) {
	if _, err := s.ownedByProvider(ctx, bookingID, providerUserID, StatusDeclined); err != nil {
		return nil, err
	}
	return s.store.Transition(ctx, bookingID, []Status{StatusPending}, StatusDeclined)
}

// Complete marks a confirmed booking as delivered. It is refused before the
// event date.
func (s *Service) Complete(ctx context.Context, bookingID, providerUserID uuid.UUID) (*Booking, error) {
	b, err := s.ownedByProvider(ctx, bookingID, providerUserID, StatusCompleted)
	if err != nil {
		return nil, err
	}
	if today(s.now()).Before(b.EventDate) {
		return nil, ErrEventNotReached
	}
	return s.store.Transition(ctx, bookingID, []Status{StatusConfirmed}, StatusCompleted)
}

// Cancel withdraws a pending or confirmed booking on behalf of its customer.
func (s *Service) Cancel(ctx context.Context, bookingID, customerID uuid.UUID) (*Booking, error) {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, ErrNotParticipant
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return nil, ErrInvalidTransition
	}
	return s.store.Transition(ctx, bookingID, []Status{StatusPending, StatusConfirmed}, StatusCancelled)
}

func (s *Service) ownedByProvider(ctx context.Context, bookingID, providerUserID uuid.UUID, to Status) (*Booking, error) {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderUserID != providerUserID {
		return nil, ErrNotParticipant
	}
	if !CanTransition(b.Status, to) {
		return nil, ErrInvalidTransition
	}
	return b, nil
}

// parseStatus reads an optional status filter.
func parseStatus(raw string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch st {
	case "", StatusPending, StatusConfirmed, StatusDeclined, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}
