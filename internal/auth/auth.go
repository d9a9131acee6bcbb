// Package auth manages accounts and access tokens.
//
// Customers and providers register with email and password or, for
// customers, with Google. Every successful sign-in returns an HS256 JWT that
// the Authenticate middleware resolves into a web.Identity.
package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrRoleNotAllowed     = errors.New("auth: role cannot self-register")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrTokenExpired       = errors.New("auth: token expired")
)

// Role is a user's role. It doubles as the RBAC role name.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Config holds token and hashing settings.
type Config struct {
	JWTSecret  string        `env:"JWT_SECRET,required"`
	TokenTTL   time.Duration `env:"JWT_TTL" envDefault:"24h"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"subhakaryam"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12"`
}

// User is an account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Token is returned on sign-in.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
