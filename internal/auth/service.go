package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/subhakaryam/subhakaryam/pkg/job"
	"github.com/subhakaryam/subhakaryam/pkg/oauth"
)

// TaskSendWelcomeEmail is enqueued after every registration.
const TaskSendWelcomeEmail = "send_welcome_email"

// WelcomePayload is the payload of TaskSendWelcomeEmail.
type WelcomePayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("subhakaryam-dummy-password"), bcrypt.MinCost)

// RegisterInput is a self-service sign-up.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,in_mobile"`
	Role     Role   `json:"role" validate:"required,oneof=customer provider admin"`
}

// Service implements registration and sign-in.
type Service struct {
	store      Store
	tokens     *TokenIssuer
	jobs       job.Dispatcher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(store Store, tokens *TokenIssuer, jobs job.Dispatcher, cfg Config, log *slog.Logger) *Service {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{store: store, tokens: tokens, jobs: jobs, bcryptCost: cost, logger: log}
}

// Register creates a customer or provider account and returns a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, *Token, error) {
	if in.Role != RoleCustomer && in.Role != RoleProvider {
		return nil, nil, ErrRoleNotAllowed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Email:        normalizeEmail(in.Email),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         in.Role,
		PasswordHash: string(hash),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, nil, err
	}

	if err := s.jobs.Enqueue(ctx, TaskSendWelcomeEmail, WelcomePayload{UserID: u.ID}); err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue welcome email",
			slog.String("user_id", u.ID.String()),
			slog.Any("error", err),
		)
	}

	tok, err := s.tokens.Issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tok, nil
}

// Login checks the password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	u, err := s.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash := dummyHash
	if u != nil && u.PasswordHash != "" {
		hash = []byte(u.PasswordHash)
	}
	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password)); cmpErr != nil || u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	return s.tokens.Issue(u)
}

// LoginWithGoogle signs in the owner of a verified Google account, creating a
// customer account on first use.
func (s *Service) LoginWithGoogle(ctx context.Context, info *oauth.UserInfo) (*Token, error) {
	u, err := s.store.UpsertGoogle(ctx, &User{
		ID:       uuid.New(),
		Email:    normalizeEmail(info.Email),
		Name:     strings.TrimSpace(info.Name),
		Role:     RoleCustomer,
		GoogleID: info.ID,
	})
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(u)
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
