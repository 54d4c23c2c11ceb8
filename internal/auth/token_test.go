package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService_EmptySecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		_, err := NewTokenService(secret, DefaultTokenTTL)
		assert.ErrorIs(t, err, ErrEmptySecret)
	}
}

func TestTokenService_IssueValidate(t *testing.T) {
	svc, err := NewTokenService("secret", DefaultTokenTTL)
	require.NoError(t, err)

	token, err := svc.Issue("u@x.com")
	require.NoError(t, err)

	subject, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", subject)
}

func TestTokenService_Expired(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
	}{
		{name: "negative ttl", ttl: -time.Minute},
		{name: "zero ttl", ttl: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTokenService("secret", tt.ttl)
			require.NoError(t, err)

			token, err := svc.Issue("u@x.com")
			require.NoError(t, err)

			_, err = svc.Validate(token)
			assert.ErrorIs(t, err, ErrTokenExpired)
			assert.NotErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestTokenService_ExpiresAfterTTL(t *testing.T) {
	svc, err := NewTokenService("secret", time.Minute)
	require.NoError(t, err)

	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	token, err := svc.Issue("u@x.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(59 * time.Second) }
	_, err = svc.Validate(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_Malformed(t *testing.T) {
	svc, err := NewTokenService("secret", DefaultTokenTTL)
	require.NoError(t, err)
	other, err := NewTokenService("other-secret", DefaultTokenTTL)
	require.NoError(t, err)

	foreign, err := other.Issue("u@x.com")
	require.NoError(t, err)

	valid, err := svc.Issue("u@x.com")
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u@x.com",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not.a.token",
		"empty":          "",
		"wrong secret":   foreign,
		"tampered":       tampered,
		"none algorithm": none,
		"no subject":     noSubject,
		"no expiry":      noExpiry,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}
