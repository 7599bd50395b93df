package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/repository/credentials"
)

const secret = "test-secret"

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()
	users := credentials.NewMemoryRepository()
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), models.Credential{Username: "admin", HashedPassword: hash}))

	s, err := NewService(users, secret, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	s.Now = func() time.Time { return t0 }
	return s
}

func TestIssueAndAuthenticate(t *testing.T) {
	s := newService(t)

	tok, err := s.Issue(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, "admin", tok.Username)
	assert.Equal(t, t0.Add(24*time.Hour), tok.ExpiresAt)

	user, err := s.Authenticate(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", user)
}

func TestIssueRejectsBadCredentials(t *testing.T) {
	s := newService(t)

	_, err := s.Issue(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, errUnknown := s.Issue(context.Background(), "ghost", "admin123")
	assert.ErrorIs(t, errUnknown, apperr.ErrInvalidCredentials)
	assert.Equal(t, err.Error(), errUnknown.Error())
}

func TestAuthenticateExpiry(t *testing.T) {
	s := newService(t)
	tok, err := s.Issue(context.Background(), "admin", "admin123")
	require.NoError(t, err)

	s.Now = func() time.Time { return t0.Add(24*time.Hour - time.Second) }
	_, err = s.Authenticate(tok.AccessToken)
	assert.NoError(t, err)

	s.Now = func() time.Time { return t0.Add(24 * time.Hour) }
	_, err = s.Authenticate(tok.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestAuthenticateExpiryFractionalIssue(t *testing.T) {
	s := newService(t)
	issued := t0.Add(700 * time.Millisecond)
	s.Now = func() time.Time { return issued }
	tok, err := s.Issue(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(24*time.Hour+time.Second), tok.ExpiresAt)

	s.Now = func() time.Time { return issued.Add(24*time.Hour - 300*time.Millisecond) }
	_, err = s.Authenticate(tok.AccessToken)
	assert.NoError(t, err)

	s.Now = func() time.Time { return tok.ExpiresAt }
	_, err = s.Authenticate(tok.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestAuthenticateRejectsForgedTokens(t *testing.T) {
	s := newService(t)
	exp := jwt.NewNumericDate(t0.Add(time.Hour))

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.RegisteredClaims{Subject: "admin", ExpiresAt: exp}).SignedString([]byte("other"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512,
		jwt.RegisteredClaims{Subject: "admin", ExpiresAt: exp}).SignedString([]byte(secret))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone,
		jwt.RegisteredClaims{Subject: "admin", ExpiresAt: exp}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.RegisteredClaims{ExpiresAt: exp}).SignedString([]byte(secret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.RegisteredClaims{Subject: "admin"}).SignedString([]byte(secret))
	require.NoError(t, err)

	good, err := s.Issue(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	parts := strings.Split(good.AccessToken, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for name, tok := range map[string]string{
		"other key":  otherKey,
		"HS512":      wrongAlg,
		"none":       noneAlg,
		"no subject": noSubject,
		"no expiry":  noExpiry,
		"tampered":   tampered,
		"garbage":    "not.a.token",
		"empty":      "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Authenticate(tok)
			assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
		})
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(credentials.NewMemoryRepository(), "", time.Hour, nil)
	assert.Error(t, err)
}
