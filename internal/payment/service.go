package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/subhakaryam/subhakaryam/pkg/db"
	"github.com/subhakaryam/subhakaryam/pkg/job"
	"github.com/subhakaryam/subhakaryam/pkg/sanitizer"
)

const (
	TaskNotifyPaymentReleased = "notify_payment_released"
	TaskNotifyDisputeOpened   = "notify_dispute_opened"
	TaskReleaseDuePayments    = "release_due_payments"
)

// EventCaptured is sent by the gateway once the customer has paid.
const EventCaptured = "payment.captured"

const (
	maxReasonLength = 1000
	releaseBatch    = 100
)

// A capture that arrives after the booking was called off is held and then
// disputed with this reason, so an admin refunds it.
const (
	bookingCancelled       = "cancelled"
	cancelledDisputeReason = "Payment captured after the booking was cancelled"
)

// NotifyPayload is the payload of the payment notification tasks.
type NotifyPayload struct {
	PaymentID uuid.UUID `json:"payment_id"`
}

// WebhookEvent is the gateway callback body.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		PaymentID  uuid.UUID `json:"payment_id"`
		GatewayRef string    `json:"gateway_ref"`
	} `json:"data"`
}

// Recorder counts payment transitions.
type Recorder interface {
	IncrementPayments(status string)
}

// Service implements escrow.
type Service struct {
	store   Store
	jobs    job.Dispatcher
	tx      db.TxRunner
	cfg     Config
	metrics Recorder
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, jobs job.Dispatcher, tx db.TxRunner, cfg Config, metrics Recorder, log *slog.Logger) *Service {
	return &Service{store: store, jobs: jobs, tx: tx, cfg: cfg, metrics: metrics, logger: log, now: time.Now}
}

// CreateForBooking opens a pending payment for a confirmed booking inside tx.
func (s *Service) CreateForBooking(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, amount int64) (*Payment, error) {
	commission, payout := Commission(amount, s.cfg.CommissionRateBps)
	p := &Payment{
		ID:         uuid.New(),
		BookingID:  bookingID,
		Amount:     amount,
		Commission: commission,
		Payout:     payout,
		Status:     StatusPending,
	}
	if err := s.store.WithTx(tx).Create(ctx, p); err != nil {
		return nil, err
	}
	s.count(StatusPending)
	return p, nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Service) verify(body []byte, signature string) error {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) != sha256.Size {
		return ErrInvalidSignature
	}
	want, _ := hex.DecodeString(Sign(s.cfg.WebhookSecret, body))
	if !hmac.Equal(got, want) {
		return ErrInvalidSignature
	}
	return nil
}

// HandleWebhook applies a signed gateway event. Replays and unknown events
// are accepted without effect.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if err := s.verify(body, signature); err != nil {
		return err
	}

	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Join(ErrInvalidEvent, err)
	}
	if ev.Event != EventCaptured {
		s.logger.InfoContext(ctx, "ignoring payment webhook event", slog.String("event", ev.Event))
		return nil
	}
	if ev.Data.PaymentID == uuid.Nil {
		return fmt.Errorf("%w: missing payment_id", ErrInvalidEvent)
	}

	p, err := s.store.Get(ctx, ev.Data.PaymentID)
	if err != nil {
		return err
	}
	if p.Status != StatusPending {
		s.logger.InfoContext(ctx, "payment already captured",
			slog.String("payment_id", p.ID.String()),
			slog.String("status", string(p.Status)),
		)
		return nil
	}

	b, err := s.store.Booking(ctx, p.BookingID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if b.Status == bookingCancelled {
		return s.holdForRefund(ctx, p.ID, ev.Data.GatewayRef, now, b.EventDate.Add(s.cfg.HoldWindow))
	}
	if _, err := s.store.MarkHeld(ctx, p.ID, ev.Data.GatewayRef, now, b.EventDate.Add(s.cfg.HoldWindow)); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return nil
		}
		return err
	}
	s.count(StatusHeld)
	return nil
}

// holdForRefund records the capture and opens a dispute on it in one
// transaction. The money never becomes releasable to the provider.
func (s *Service) holdForRefund(ctx context.Context, paymentID uuid.UUID, gatewayRef string, now, releaseAfter time.Time) error {
	err := s.tx(ctx, func(tx pgx.Tx) error {
		store := s.store.WithTx(tx)
		if _, err := store.MarkHeld(ctx, paymentID, gatewayRef, now, releaseAfter); err != nil {
			return err
		}
		if _, err := store.Transition(ctx, paymentID, []Status{StatusHeld}, StatusDisputed, cancelledDisputeReason); err != nil {
			return err
		}
		return s.jobs.EnqueueTx(ctx, tx, TaskNotifyDisputeOpened, NotifyPayload{PaymentID: paymentID})
	})
	if errors.Is(err, ErrInvalidTransition) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "payment captured for cancelled booking, disputed for refund",
		slog.String("payment_id", paymentID.String()),
	)
	s.count(StatusDisputed)
	return nil
}

// Release pays out a held or disputed payment to the provider.
func (s *Service) Release(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	return s.settle(ctx, paymentID, []Status{StatusHeld, StatusDisputed}, StatusReleased)
}

// Resolve closes a dispute. outcome is released or refunded.
func (s *Service) Resolve(ctx context.Context, paymentID uuid.UUID, outcome Status) (*Payment, error) {
	if outcome != StatusReleased && outcome != StatusRefunded {
		return nil, ErrInvalidOutcome
	}
	return s.settle(ctx, paymentID, []Status{StatusDisputed}, outcome)
}

func (s *Service) settle(ctx context.Context, paymentID uuid.UUID, from []Status, to Status) (*Payment, error) {
	var out *Payment
	err := s.tx(ctx, func(tx pgx.Tx) error {
		p, err := s.store.WithTx(tx).Transition(ctx, paymentID, from, to, "")
		if err != nil {
			return err
		}
		if to == StatusReleased {
			if err := s.jobs.EnqueueTx(ctx, tx, TaskNotifyPaymentReleased, NotifyPayload{PaymentID: p.ID}); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.count(to)
	return out, nil
}

// Dispute freezes a held payment. Only the booking's customer may dispute.
func (s *Service) Dispute(ctx context.Context, paymentID, actorID uuid.UUID, reason string) (*Payment, error) {
	reason = sanitizer.PlainText(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	if r := []rune(reason); len(r) > maxReasonLength {
		reason = string(r[:maxReasonLength])
	}

	p, err := s.store.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Booking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != actorID {
		return nil, ErrNotCustomer
	}
	if !CanTransition(p.Status, StatusDisputed) {
		return nil, ErrInvalidTransition
	}

	var out *Payment
	err = s.tx(ctx, func(tx pgx.Tx) error {
		updated, err := s.store.WithTx(tx).Transition(ctx, paymentID, sources(StatusDisputed), StatusDisputed, reason)
		if err != nil {
			return err
		}
		out = updated
		return s.jobs.EnqueueTx(ctx, tx, TaskNotifyDisputeOpened, NotifyPayload{PaymentID: paymentID})
	})
	if err != nil {
		return nil, err
	}
	s.count(StatusDisputed)
	return out, nil
}

// ReleaseDue releases every held payment whose hold window has passed for a
// completed booking. It returns how many were released.
func (s *Service) ReleaseDue(ctx context.Context) (int, error) {
	ids, err := s.store.DueForRelease(ctx, s.now().UTC(), releaseBatch)
	if err != nil {
		return 0, err
	}

	released := 0
	var errs []error
	for _, id := range ids {
		if _, err := s.Release(ctx, id); err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			errs = append(errs, fmt.Errorf("release %s: %w", id, err))
			continue
		}
		released++
	}
	if released > 0 {
		s.logger.InfoContext(ctx, "released due payments", slog.Int("count", released))
	}
	return released, errors.Join(errs...)
}

// ForBooking returns the payment of a booking to one of its parties or an admin.
func (s *Service) ForBooking(ctx context.Context, bookingID, userID uuid.UUID, admin bool) (*Payment, error) {
	if !admin {
		b, err := s.store.Booking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if userID != b.CustomerID && userID != b.ProviderUserID {
			return nil, ErrNotParticipant
		}
	}
	return s.store.GetByBooking(ctx, bookingID)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]Payment, error) {
	return s.store.List(ctx, status, limit, offset)
}

func (s *Service) count(status Status) {
	if s.metrics != nil {
		s.metrics.IncrementPayments(string(status))
	}
}

// ReleaseDueTask runs ReleaseDue every fifteen minutes.
type ReleaseDueTask struct {
	svc *Service
}

func NewReleaseDueTask(svc *Service) *ReleaseDueTask {
	return &ReleaseDueTask{svc: svc}
}

func (t *ReleaseDueTask) Name() string     { return TaskReleaseDuePayments }
func (t *ReleaseDueTask) Schedule() string { return "*/15 * * * *" }

func (t *ReleaseDueTask) Handle(ctx context.Context) error {
	_, err := t.svc.ReleaseDue(ctx)
	return err
}
