package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/subhakaryam/subhakaryam/pkg/cache"
	"github.com/subhakaryam/subhakaryam/pkg/id"
	"github.com/subhakaryam/subhakaryam/pkg/sanitizer"
	"github.com/subhakaryam/subhakaryam/pkg/slug"
	"github.com/subhakaryam/subhakaryam/pkg/storage"
)

const (
	listTTL       = 5 * time.Minute
	slugMaxLength = 60
	slugAttempts  = 3
)

var reservedSlugs = []string{"new", "edit", "search", "me", "admin"}

// Input is the editable part of a profile.
type Input struct {
	BusinessName string   `json:"business_name" validate:"required,max=120"`
	Category     Category `json:"category" validate:"required,oneof=priest photographer caterer decorator function_hall"`
	City         string   `json:"city" validate:"required,max=80"`
	Bio          string   `json:"bio" validate:"max=5000"`
	BasePrice    int64    `json:"base_price" validate:"gte=0"`
}

// Service implements provider profiles and portfolios.
type Service struct {
	store   Store
	files   storage.Storage
	listing cache.Cache[[]Provider]
	logger  *slog.Logger
}

func NewService(store Store, files storage.Storage, listing cache.Cache[[]Provider], log *slog.Logger) *Service {
	return &Service{store: store, files: files, listing: listing, logger: log}
}

// Create registers the profile of userID. The slug is derived from the
// business name and gets a random suffix when already taken.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in Input) (*Provider, error) {
	if !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	p := &Provider{
		ID:           uuid.New(),
		UserID:       userID,
		BusinessName: strings.TrimSpace(in.BusinessName),
		Category:     in.Category,
		City:         strings.TrimSpace(in.City),
		Bio:          sanitizer.RichText(in.Bio),
		BasePrice:    in.BasePrice,
	}

	opts := []slug.Option{slug.MaxLength(slugMaxLength), slug.Fallback("provider"), slug.Reserved(reservedSlugs...)}
	p.Slug = slug.Make(p.BusinessName, opts...)

	var err error
	for range slugAttempts {
		err = s.store.Create(ctx, p)
		if !errors.Is(err, ErrSlugTaken) {
			break
		}
		p.Slug = slug.Make(p.BusinessName, append(opts, slug.WithSuffix(id.NewShortID()))...)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return p, nil
}

// Update edits the profile owned by userID.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, in Input) (*Provider, error) {
	if !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	p, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.BusinessName = strings.TrimSpace(in.BusinessName)
	p.Category = in.Category
	p.City = strings.TrimSpace(in.City)
	p.Bio = sanitizer.RichText(in.Bio)
	p.BasePrice = in.BasePrice

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *Service) Get(ctx context.Context, providerSlug string) (*Provider, error) {
	return s.store.GetBySlug(ctx, providerSlug)
}

func (s *Service) GetByID(ctx context.Context, providerID uuid.UUID) (*Provider, error) {
	return s.store.GetByID(ctx, providerID)
}

func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*Provider, error) {
	return s.store.GetByUserID(ctx, userID)
}

// List returns providers matching f. Results are cached per filter.
func (s *Service) List(ctx context.Context, f Filter) ([]Provider, error) {
	f = f.normalized()
	return cache.GetOrSet(ctx, s.listing, listKey(f), func(ctx context.Context) ([]Provider, time.Duration, error) {
		list, err := s.store.List(ctx, f)
		return list, listTTL, err
	})
}

func listKey(f Filter) string {
	verified := "any"
	if f.Verified != nil {
		verified = fmt.Sprint(*f.Verified)
	}
	return fmt.Sprintf("list:%s:%s:%s:%d:%d", f.Category, strings.ToLower(f.City), verified, f.Limit, f.Offset)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.listing.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear provider listing cache", slog.Any("error", err))
	}
}

// UploadPortfolio stores an image for the profile owned by userID and returns
// the updated profile.
func (s *Service) UploadPortfolio(ctx context.Context, userID uuid.UUID, r io.Reader) (*Provider, error) {
	p, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(p.PortfolioKeys) >= MaxPortfolioItems {
		return nil, ErrPortfolioFull
	}

	file, err := storage.Sniff(r, MaxPortfolioSize, storage.ImageTypes)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("providers/%s/%s%s", p.ID, id.NewULID(), file.Ext)
	if err := s.files.Put(ctx, key, file.Body, file.Size, file.ContentType); err != nil {
		return nil, err
	}

	updated, err := s.store.AddPortfolioKey(ctx, p.ID, key, MaxPortfolioItems)
	if err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned portfolio image",
				slog.String("key", key),
				slog.Any("error", delErr),
			)
		}
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// RemovePortfolio deletes one image from the profile owned by userID.
func (s *Service) RemovePortfolio(ctx context.Context, userID uuid.UUID, key string) (*Provider, error) {
	p, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.RemovePortfolioKey(ctx, p.ID, key)
	if err != nil {
		return nil, err
	}
	if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to delete portfolio image",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
	s.invalidate(ctx)
	return updated, nil
}

// PortfolioItem is a portfolio image with a URL clients can fetch.
type PortfolioItem struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PortfolioURLs resolves the portfolio keys of p.
func (s *Service) PortfolioURLs(ctx context.Context, p *Provider) ([]PortfolioItem, error) {
	items := make([]PortfolioItem, 0, len(p.PortfolioKeys))
	for _, key := range p.PortfolioKeys {
		u, err := s.files.URL(ctx, key)
		if err != nil {
			return nil, err
		}
		items = append(items, PortfolioItem{Key: key, URL: u})
	}
	return items, nil
}

// Verify sets the verified flag of a provider.
func (s *Service) Verify(ctx context.Context, providerID uuid.UUID, verified bool) (*Provider, error) {
	p, err := s.store.SetVerified(ctx, providerID, verified)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}
