package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/subhakaryam/subhakaryam/pkg/db"
)

// Store persists payments.
type Store interface {
	WithTx(tx pgx.Tx) Store
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
	List(ctx context.Context, status Status, limit, offset int) ([]Payment, error)
	Booking(ctx context.Context, bookingID uuid.UUID) (*BookingRef, error)
	// MarkHeld moves a pending payment to held.
	MarkHeld(ctx context.Context, id uuid.UUID, gatewayRef string, heldAt, releaseAfter time.Time) (*Payment, error)
	// Transition moves the payment to to if its status is one of from. A
	// non-empty reason is stored as the dispute reason.
	Transition(ctx context.Context, id uuid.UUID, from []Status, to Status, reason string) (*Payment, error)
	// DueForRelease returns held payments whose hold window ended before now
	// and whose booking is completed.
	DueForRelease(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// PGStore is the PostgreSQL Store.
type PGStore struct {
	q db.DBTX
}

func NewPGStore(q db.DBTX) *PGStore {
	return &PGStore{q: q}
}

func (s *PGStore) WithTx(tx pgx.Tx) Store {
	if tx == nil {
		return s
	}
	return &PGStore{q: tx}
}

const columns = `id, booking_id, amount, commission, payout, status, gateway_ref,
	held_at, release_after, released_at, dispute_reason, created_at, updated_at`

func scan(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Commission, &p.Payout, &p.Status, &p.GatewayRef,
		&p.HeldAt, &p.ReleaseAfter, &p.ReleasedAt, &p.DisputeReason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) Create(ctx context.Context, p *Payment) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO payments (id, booking_id, amount, commission, payout, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		p.ID, p.BookingID, p.Amount, p.Commission, p.Payout, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return scan(s.q.QueryRow(ctx, `SELECT `+columns+` FROM payments WHERE id = $1`, id))
}

func (s *PGStore) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	return scan(s.q.QueryRow(ctx, `SELECT `+columns+` FROM payments WHERE booking_id = $1`, bookingID))
}

func (s *PGStore) List(ctx context.Context, status Status, limit, offset int) ([]Payment, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+columns+` FROM payments
		WHERE ($1 = '' OR status = $1)
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3`,
		string(status), limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Payment{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PGStore) Booking(ctx context.Context, bookingID uuid.UUID) (*BookingRef, error) {
	var b BookingRef
	err := s.q.QueryRow(ctx, `
		SELECT b.id, b.customer_id, p.user_id, b.event_date, b.status
		FROM bookings b
		JOIN providers p ON p.id = b.provider_id
		WHERE b.id = $1`,
		bookingID,
	).Scan(&b.ID, &b.CustomerID, &b.ProviderUserID, &b.EventDate, &b.Status)
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PGStore) MarkHeld(ctx context.Context, id uuid.UUID, gatewayRef string, heldAt, releaseAfter time.Time) (*Payment, error) {
	p, err := scan(s.q.QueryRow(ctx, `
		UPDATE payments
		SET status = 'held', gateway_ref = $2, held_at = $3, release_after = $4, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+columns,
		id, gatewayRef, heldAt, releaseAfter,
	))
	if err == nil {
		return p, nil
	}
	return nil, s.guardFailed(ctx, id, err)
}

func (s *PGStore) Transition(ctx context.Context, id uuid.UUID, from []Status, to Status, reason string) (*Payment, error) {
	p, err := scan(s.q.QueryRow(ctx, `
		UPDATE payments
		SET status = $3,
		    released_at = CASE WHEN $3 = 'released' THEN now() ELSE released_at END,
		    dispute_reason = CASE WHEN $4 <> '' THEN $4 ELSE dispute_reason END,
		    updated_at = now()
		WHERE id = $1 AND status = ANY($2)
		RETURNING `+columns,
		id, statusStrings(from), string(to), reason,
	))
	if err == nil {
		return p, nil
	}
	return nil, s.guardFailed(ctx, id, err)
}

func statusStrings(in []Status) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

// guardFailed tells a missing payment apart from one in the wrong status.
func (s *PGStore) guardFailed(ctx context.Context, id uuid.UUID, err error) error {
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return getErr
	}
	return ErrInvalidTransition
}

func (s *PGStore) DueForRelease(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := s.q.Query(ctx, `
		SELECT p.id
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE p.status = 'held' AND p.release_after <= $1 AND b.status = 'completed'
		ORDER BY p.release_after
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}
