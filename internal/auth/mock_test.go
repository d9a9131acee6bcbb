package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *MockStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *MockStore) UpsertGoogle(ctx context.Context, u *User) (*User, error) {
	args := m.Called(ctx, u)
	got, _ := args.Get(0).(*User)
	return got, args.Error(1)
}
