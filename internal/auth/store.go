package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/subhakaryam/subhakaryam/pkg/db"
)

// Store persists users.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// UpsertGoogle links googleID to the user with email, creating a customer
	// when none exists.
	UpsertGoogle(ctx context.Context, u *User) (*User, error)
}

// PGStore is the PostgreSQL Store.
type PGStore struct {
	q db.DBTX
}

func NewPGStore(q db.DBTX) *PGStore {
	return &PGStore{q: q}
}

const userColumns = `id, email, name, phone, role, password_hash, coalesce(google_id, ''), created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.PasswordHash, &u.GoogleID, &u.CreatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PGStore) Create(ctx context.Context, u *User) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO users (id, email, name, phone, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		u.ID, u.Email, u.Name, u.Phone, u.Role, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (s *PGStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PGStore) UpsertGoogle(ctx context.Context, u *User) (*User, error) {
	got, err := scanUser(s.q.QueryRow(ctx, `
		INSERT INTO users (id, email, name, role, google_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET google_id = coalesce(users.google_id, EXCLUDED.google_id)
		RETURNING `+userColumns,
		u.ID, u.Email, u.Name, u.Role, u.GoogleID,
	))
	if db.IsUniqueViolation(err) {
		// google_id already belongs to another account
		return nil, ErrEmailTaken
	}
	return got, err
}
