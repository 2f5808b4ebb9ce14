package jwtmw

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestNewService verifies construction and the missing-secret guard.
func TestNewService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		secret      string
		ttl         time.Duration
		expectedTTL time.Duration
		wantErr     error
	}{
		{"standard config", "my-secret-key", time.Hour, time.Hour, nil},
		{"zero ttl uses default", "secret", 0, TokenTTL, nil},
		{"missing secret", "", time.Hour, 0, ErrMissingSecret},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, err := NewService(tt.secret, tt.ttl)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				if svc != nil {
					t.Error("expected nil service")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(svc.secret) != tt.secret {
				t.Errorf("expected secret %q, got %q", tt.secret, string(svc.secret))
			}
			if svc.ttl != tt.expectedTTL {
				t.Errorf("expected ttl %v, got %v", tt.expectedTTL, svc.ttl)
			}
		})
	}
}

// TestService_IssueVerifyRoundTrip checks that a token resolves back to the user it was issued for.
func TestService_IssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _ := NewService("test-secret", TokenTTL)

	for _, id := range []uint{1, 42, 999999} {
		id := id
		t.Run(strconv.FormatUint(uint64(id), 10), func(t *testing.T) {
			t.Parallel()

			token, err := svc.Issue(id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := svc.Verify(token)
			if err != nil {
				t.Fatalf("unexpected verify error: %v", err)
			}
			if got != id {
				t.Errorf("expected user id %d, got %d", id, got)
			}
		})
	}
}

// TestService_Issue_Claims verifies algorithm, subject and the seven day expiry.
func TestService_Issue_Claims(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := NewService("test-secret", 0)
	svc.now = func() time.Time { return issuedAt }

	tokenStr, err := svc.Issue(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return []byte("test-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return issuedAt }))
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if token.Method.Alg() != "HS256" {
		t.Errorf("expected HS256, got %s", token.Method.Alg())
	}
	if claims.Subject != "7" {
		t.Errorf("expected sub 7, got %q", claims.Subject)
	}
	if !claims.IssuedAt.Time.Equal(issuedAt) {
		t.Errorf("expected iat %v, got %v", issuedAt, claims.IssuedAt.Time)
	}
	if want := issuedAt.Add(7 * 24 * time.Hour); !claims.ExpiresAt.Time.Equal(want) {
		t.Errorf("expected exp %v, got %v", want, claims.ExpiresAt.Time)
	}
}

// TestService_Verify_Expired checks that a correctly signed token past its expiry is reported as expired.
func TestService_Verify_Expired(t *testing.T) {
	t.Parallel()

	svc, _ := NewService("test-secret", 0)

	expired := signClaims(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	_, err := svc.Verify(expired)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
	if errors.Is(err, ErrInvalidToken) {
		t.Error("expired token should not be reported as invalid")
	}
}

// TestService_Verify_ExpiresAfterTTL moves the clock past the TTL of a freshly issued token.
func TestService_Verify_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := NewService("test-secret", 0)
	svc.now = func() time.Time { return start }

	token, err := svc.Issue(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.now = func() time.Time { return start.Add(TokenTTL - time.Minute) }
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	svc.now = func() time.Time { return start.Add(TokenTTL + time.Minute) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

// TestService_Verify_Invalid covers tampering, wrong secrets, foreign algorithms and bad payloads.
func TestService_Verify_Invalid(t *testing.T) {
	t.Parallel()

	svc, _ := NewService("test-secret", 0)
	valid, _ := svc.Issue(1)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "1", ExpiresAt: future,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed token", "not.a.valid.token"},
		{"random string", "randomstring"},
		{"tampered signature", valid[:len(valid)-2] + "xx"},
		{"wrong secret", signClaims(t, "wrong-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1", ExpiresAt: future})},
		{"expired and wrong secret", signClaims(t, "wrong-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))})},
		{"none algorithm", noneToken},
		{"HS512 algorithm", signClaims(t, "test-secret", jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "1", ExpiresAt: future})},
		{"missing expiry", signClaims(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"})},
		{"non numeric subject", signClaims(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: future})},
		{"zero subject", signClaims(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "0", ExpiresAt: future})},
		{"missing subject", signClaims(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: future})},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := svc.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
			if id != 0 {
				t.Errorf("expected zero id, got %d", id)
			}
		})
	}
}

// TestService_Issue_DifferentUsersProduceDifferentTokens verifies tokens are user specific.
func TestService_Issue_DifferentUsersProduceDifferentTokens(t *testing.T) {
	t.Parallel()

	svc, _ := NewService("test-secret", time.Hour)

	token1, _ := svc.Issue(1)
	token2, _ := svc.Issue(2)

	if token1 == token2 {
		t.Error("expected different tokens for different users")
	}
}

// signClaims signs claims with an arbitrary secret and method for tests.
func signClaims(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}
