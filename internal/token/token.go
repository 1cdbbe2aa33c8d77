// Package token issues and verifies stateless HS256 session tokens.
//
// Tokens are trusted until they expire. There is no revocation list, so
// logging out only drops the client's copy.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ErlanBelekov/diary-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 24 * time.Hour

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type Service struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewService(key []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{key: key, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for iat/exp and expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for the user.
func (s *Service) Issue(userID int64, email string) (string, error) {
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. Every failure is domain.ErrTokenInvalid.
func (s *Service) Verify(raw string) (domain.Claims, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return domain.Claims{}, domain.ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Claims{}, domain.ErrTokenInvalid
	}

	out := domain.Claims{UserID: userID, Email: c.Email}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
