package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/subhakaryam/subhakaryam/pkg/db"
)

// Store persists providers.
type Store interface {
	Create(ctx context.Context, p *Provider) error
	Update(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	GetBySlug(ctx context.Context, slug string) (*Provider, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Provider, error)
	List(ctx context.Context, f Filter) ([]Provider, error)
	// AddPortfolioKey appends key unless the portfolio already holds limit items.
	AddPortfolioKey(ctx context.Context, id uuid.UUID, key string, limit int) (*Provider, error)
	RemovePortfolioKey(ctx context.Context, id uuid.UUID, key string) (*Provider, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*Provider, error)
}

// PGStore is the PostgreSQL Store.
type PGStore struct {
	q db.DBTX
}

func NewPGStore(q db.DBTX) *PGStore {
	return &PGStore{q: q}
}

const columns = `id, user_id, slug, business_name, category, city, bio, base_price,
	verified, rating::float8, portfolio_keys, created_at, updated_at`

func scan(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.UserID, &p.Slug, &p.BusinessName, &p.Category, &p.City, &p.Bio,
		&p.BasePrice, &p.Verified, &p.Rating, &p.PortfolioKeys, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) Create(ctx context.Context, p *Provider) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO providers (id, user_id, slug, business_name, category, city, bio, base_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		p.ID, p.UserID, p.Slug, p.BusinessName, p.Category, p.City, p.Bio, p.BasePrice,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if db.IsUniqueViolation(err) {
		if strings.Contains(db.ConstraintName(err), "slug") {
			return ErrSlugTaken
		}
		return ErrProfileExists
	}
	return err
}

func (s *PGStore) Update(ctx context.Context, p *Provider) error {
	err := s.q.QueryRow(ctx, `
		UPDATE providers
		SET business_name = $2, category = $3, city = $4, bio = $5, base_price = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.BusinessName, p.Category, p.City, p.Bio, p.BasePrice,
	).Scan(&p.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return err
}

func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return scan(s.q.QueryRow(ctx, `SELECT `+columns+` FROM providers WHERE id = $1`, id))
}

func (s *PGStore) GetBySlug(ctx context.Context, slug string) (*Provider, error) {
	return scan(s.q.QueryRow(ctx, `SELECT `+columns+` FROM providers WHERE slug = $1`, slug))
}

func (s *PGStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*Provider, error) {
	return scan(s.q.QueryRow(ctx, `SELECT `+columns+` FROM providers WHERE user_id = $1`, userID))
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]Provider, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+columns+` FROM providers
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR lower(city) = lower($2))
		  AND ($3::boolean IS NULL OR verified = $3)
		ORDER BY verified DESC, rating DESC, created_at DESC
		LIMIT $4 OFFSET $5`,
		string(f.Category), f.City, f.Verified, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Provider{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PGStore) AddPortfolioKey(ctx context.Context, id uuid.UUID, key string, limit int) (*Provider, error) {
	p, err := scan(s.q.QueryRow(ctx, `
		UPDATE providers
		SET portfolio_keys = array_append(portfolio_keys, $2), updated_at = now()
		WHERE id = $1 AND cardinality(portfolio_keys) < $3
		RETURNING `+columns,
		id, key, limit,
	))
	if errors.Is(err, ErrNotFound) {
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrPortfolioFull
	}
	return p, err
}

func (s *PGStore) RemovePortfolioKey(ctx context.Context, id uuid.UUID, key string) (*Provider, error) {
	p, err := scan(s.q.QueryRow(ctx, `
		UPDATE providers
		SET portfolio_keys = array_remove(portfolio_keys, $2), updated_at = now()
		WHERE id = $1 AND $2 = ANY(portfolio_keys)
		RETURNING `+columns,
		id, key,
	))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrPortfolioItem
	}
	return p, err
}

func (s *PGStore) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*Provider, error) {
	return scan(s.q.QueryRow(ctx, `
		UPDATE providers SET verified = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		id, verified,
	))
}
