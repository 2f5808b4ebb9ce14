// Package jwtmw issues and verifies bearer tokens and provides the gin middleware that enforces them.
package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of every issued token. There is no refresh; clients log in again.
const TokenTTL = 7 * 24 * time.Hour

var (
	// ErrMissingSecret is returned when the service is constructed without a signing secret.
	ErrMissingSecret = errors.New("jwt secret is not configured")

	// ErrInvalidToken covers bad signatures, unexpected algorithms and malformed payloads.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned for a correctly signed token whose expiry has passed.
	ErrExpiredToken = errors.New("token has expired")
)

// Service signs and verifies HS256 tokens carrying a user ID.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a Service. A zero ttl means TokenTTL.
func NewService(secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue creates a signed token for userID that expires after the service TTL.
func (s *Service) Issue(userID uint) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenStr and returns the user ID it was issued for.
// It returns ErrExpiredToken or an error wrapping ErrInvalidToken.
func (s *Service) Verify(tokenStr string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		// The signature is checked before the claims, so an expired error implies a genuine token.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return uint(id), nil
}
