// Package admin is the back office: provider verification and escrow
// settlement. Every route requires an admin permission.
package admin

import (
	"context"

	"github.com/google/uuid"

	"github.com/subhakaryam/subhakaryam/internal/payment"
	"github.com/subhakaryam/subhakaryam/internal/provider"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Providers is satisfied by *provider.Service.
type Providers interface {
	List(ctx context.Context, f provider.Filter) ([]provider.Provider, error)
	Verify(ctx context.Context, providerID uuid.UUID, verified bool) (*provider.Provider, error)
}

// Payments is satisfied by *payment.Service.
type Payments interface {
	List(ctx context.Context, status payment.Status, limit, offset int) ([]payment.Payment, error)
	Release(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error)
	Resolve(ctx context.Context, paymentID uuid.UUID, outcome payment.Status) (*payment.Payment, error)
}
