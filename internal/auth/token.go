package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/subhakaryam/subhakaryam/internal/web"
	"github.com/subhakaryam/subhakaryam/pkg/logger"
)

// minSecretLength is the shortest HS256 key accepted.
const minSecretLength = 32

// Claims are the access token claims. Subject holds the user ID.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer fails when the secret is shorter than 32 bytes.
func NewTokenIssuer(cfg Config) (*TokenIssuer, error) {
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, errors.New("auth: JWT_SECRET must be at least 32 bytes")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for u with a fresh jti.
func (t *TokenIssuer) Issue(u *User) (*Token, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: exp.UTC()}, nil
}

// Parse verifies signature, issuer and expiry. Only HMAC methods are accepted.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

// Authenticate implements middlewares.TokenParser.
func (t *TokenIssuer) Authenticate(raw string) (web.Identity, error) {
	claims, err := t.Parse(raw)
	if err != nil {
		return web.Identity{}, err
	}
	return web.Identity{UserID: claims.Subject, Email: claims.Email, Role: string(claims.Role)}, nil
}

// UserIDExtractor adds user_id to log records of authenticated requests.
func UserIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := web.IdentityFrom(ctx); ok {
			return slog.String("user_id", id.UserID), true
		}
		return slog.Attr{}, false
	}
}

// CallerID parses the identity's user ID. It fails for anonymous callers.
func CallerID(c web.Context) (uuid.UUID, error) {
	id, ok := c.Identity()
	if !ok {
		return uuid.Nil, web.ErrUnauthorized("authentication required")
	}
	uid, err := uuid.Parse(id.UserID)
	if err != nil {
		return uuid.Nil, web.ErrUnauthorized("authentication required", web.WithError(err))
	}
	return uid, nil
}
