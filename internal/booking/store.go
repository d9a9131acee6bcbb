package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/subhakaryam/subhakaryam/pkg/db"
)

// Store persists bookings.
type Store interface {
	WithTx(tx pgx.Tx) Store
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, status Status, limit, offset int) ([]Booking, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID, status Status, limit, offset int) ([]Booking, error)
	// Transition moves the booking to to if its status is one of from.
	Transition(ctx context.Context, id uuid.UUID, from []Status, to Status) (*Booking, error)
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

const selectBooking = `
	SELECT b.id, b.customer_id, b.provider_id, p.user_id, b.event_date, b.event_type, b.location,
	       b.notes, b.amount, b.status, b.created_at, b.updated_at
	FROM bookings b
	JOIN providers p ON p.id = b.provider_id`

func scan(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.CustomerID, &b.ProviderID, &b.ProviderUserID, &b.EventDate, &b.EventType,
		&b.Location, &b.Notes, &b.Amount, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func collect(rows pgx.Rows, err error) ([]Booking, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *PGStore) Create(ctx context.Context, b *Booking) error {
	return s.q.QueryRow(ctx, `
		INSERT INTO bookings (id, customer_id, provider_id, event_date, event_type, location, notes, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		b.ID, b.CustomerID, b.ProviderID, b.EventDate, b.EventType, b.Location, b.Notes, b.Amount, string(b.Status),
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return scan(s.q.QueryRow(ctx, selectBooking+` WHERE b.id = $1`, id))
}

func (s *PGStore) ListForCustomer(ctx context.Context, customerID uuid.UUID, status Status, limit, offset int) ([]Booking, error) {
	return collect(s.q.Query(ctx, selectBooking+`
		WHERE b.customer_id = $1 AND ($2 = '' OR b.status = $2)
		ORDER BY b.event_date DESC, b.created_at DESC
		LIMIT $3 OFFSET $4`,
		customerID, string(status), limit, offset,
	))
}

func (s *PGStore) ListForProvider(ctx context.Context, providerID uuid.UUID, status Status, limit, offset int) ([]Booking, error) {
	return collect(s.q.Query(ctx, selectBooking+`
		WHERE b.provider_id = $1 AND ($2 = '' OR b.status = $2)
		ORDER BY b.event_date DESC, b.created_at DESC
		LIMIT $3 OFFSET $4`,
		providerID, string(status), limit, offset,
	))
}

func (s *PGStore) Transition(ctx context.Context, id uuid.UUID, from []Status, to Status) (*Booking, error) {
	expected := make([]string, len(from))
	for i, st := range from {
		expected[i] = string(st)
	}
	b, err := scan(s.q.QueryRow(ctx, `
		WITH updated AS (
			UPDATE bookings SET status = $3, updated_at = now()
			WHERE id = $1 AND status = ANY($2)
			RETURNING *
		)
		SELECT b.id, b.customer_id, b.provider_id, p.user_id, b.event_date, b.event_type, b.location,
		       b.notes, b.amount, b.status, b.created_at, b.updated_at
		FROM updated b
		JOIN providers p ON p.id = b.provider_id`,
		id, expected, string(to),
	))
	if !errors.Is(err, ErrNotFound) {
		return b, err
	}
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrInvalidTransition
}
