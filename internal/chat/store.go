package chat

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/subhakaryam/subhakaryam/pkg/db"
)

// Store persists messages.
type Store interface {
	Create(ctx context.Context, m *Message) error
	// History returns up to limit messages created before before, oldest
	// first. A zero before means now.
	History(ctx context.Context, bookingID uuid.UUID, before time.Time, limit int) ([]Message, error)
}

// PGStore is the PostgreSQL Store.
type PGStore struct {
	q db.DBTX
}

func NewPGStore(q db.DBTX) *PGStore {
	return &PGStore{q: q}
}

func (s *PGStore) Create(ctx context.Context, m *Message) error {
	return s.q.QueryRow(ctx, `
		INSERT INTO messages (id, booking_id, sender_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		m.ID, m.BookingID, m.SenderID, m.Body,
	).Scan(&m.CreatedAt)
}

func (s *PGStore) History(ctx context.Context, bookingID uuid.UUID, before time.Time, limit int) ([]Message, error) {
	var cursor *time.Time
	if !before.IsZero() {
		cursor = &before
	}
	rows, err := s.q.Query(ctx, `
		SELECT id, booking_id, sender_id, body, created_at
		FROM messages
		WHERE booking_id = $1 AND ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY created_at DESC
		LIMIT $3`,
		bookingID, cursor, limit,
	)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Message])
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}
