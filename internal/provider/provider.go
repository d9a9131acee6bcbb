// Package provider manages the public profiles of service providers:
// priests, photographers, caterers, decorators and function halls.
package provider

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("provider: not found")
	ErrProfileExists   = errors.New("provider: profile already exists")
	ErrSlugTaken       = errors.New("provider: slug already taken")
	ErrPortfolioFull   = errors.New("provider: portfolio is full")
	ErrPortfolioItem   = errors.New("provider: portfolio item not found")
	ErrInvalidCategory = errors.New("provider: invalid category")
)

// Category is the kind of service offered.
type Category string

const (
	CategoryPriest       Category = "priest"
	CategoryPhotographer Category = "photographer"
	CategoryCaterer      Category = "caterer"
	CategoryDecorator    Category = "decorator"
	CategoryFunctionHall Category = "function_hall"
)

// Categories lists every valid Category.
var Categories = []Category{CategoryPriest, CategoryPhotographer, CategoryCaterer, CategoryDecorator, CategoryFunctionHall}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

const (
	// MaxPortfolioItems caps the images a provider can upload.
	MaxPortfolioItems = 12
	// MaxPortfolioSize caps a single image, in bytes.
	MaxPortfolioSize = 10 << 20
)

// Provider is a service provider profile. Prices are in paise.
type Provider struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Slug          string    `json:"slug"`
	BusinessName  string    `json:"business_name"`
	Category      Category  `json:"category"`
	City          string    `json:"city"`
	Bio           string    `json:"bio"`
	BasePrice     int64     `json:"base_price"`
	Verified      bool      `json:"verified"`
	Rating        float64   `json:"rating"`
	PortfolioKeys []string  `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Filter narrows List. A nil Verified matches both states.
type Filter struct {
	Category Category
	City     string
	Verified *bool
	Limit    int
	Offset   int
}

const (
	defaultLimit = 20
	maxLimit     = 50
)

func (f Filter) normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	f.Limit = min(f.Limit, maxLimit)
	f.Offset = max(f.Offset, 0)
	return f
}
