// Package cookie sets HMAC-signed cookies. The API is token based, so cookies
// only carry short-lived values such as the OAuth state.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrBadSecret = errors.New("cookie: secret must be at least 32 bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
)

// Signer signs and verifies cookie values with a shared secret.
type Signer struct {
	secret []byte
	secure bool
}

// NewSigner returns ErrBadSecret for secrets shorter than 32 bytes.
func NewSigner(secret string, secure bool) (*Signer, error) {
	if len(secret) < 32 {
		return nil, ErrBadSecret
	}
	return &Signer{secret: []byte(secret), secure: secure}, nil
}

// Set writes name=value|sig with the given lifetime. Cookies are HttpOnly
// and SameSite=Lax so they survive the OAuth redirect back to us.
func (s *Signer) Set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + s.sign(name, value),
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get returns the verified value of name.
func (s *Signer) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", ErrNotFound
	}

	encoded, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return "", ErrBadSig
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrBadSig
	}
	value := string(raw)
	if !hmac.Equal([]byte(sig), []byte(s.sign(name, value))) {
		return "", ErrBadSig
	}
	return value, nil
}

// Delete expires name.
func (s *Signer) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// The cookie name is part of the MAC so a value cannot be replayed under another name.
func (s *Signer) sign(name, value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
