package provider

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, p *Provider) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockStore) Update(ctx context.Context, p *Provider) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockStore) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*Provider)
	return p, args.Error(1)
}

func (m *MockStore) GetBySlug(ctx context.Context, slug string) (*Provider, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*Provider)
	return p, args.Error(1)
}

func (m *MockStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*Provider, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*Provider)
	return p, args.Error(1)
}

func (m *MockStore) List(ctx context.Context, f Filter) ([]Provider, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]Provider)
	return list, args.Error(1)
}

func (m *MockStore) AddPortfolioKey(ctx context.Context, id uuid.UUID, key string, limit int) (*Provider, error) {
	args := m.Called(ctx, id, key, limit)
	p, _ := args.Get(0).(*Provider)
	return p, args.Error(1)
}

func (m *MockStore) RemovePortfolioKey(ctx context.Context, id uuid.UUID, key string) (*Provider, error) {
	args := m.Called(ctx, id, key)
	p, _ := args.Get(0).(*Provider)
	return p, args.Error(1)
}

func (m *MockStore) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*Provider, error) {
	args := m.Called(ctx, id, verified)
	p, _ := args.Get(0).(*Provider)
	return p, args.Error(1)
}
