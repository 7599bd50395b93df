package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/metrics"
	"vehicle_finance/internal/ports"
)

const (
	DefaultTTL = 24 * time.Hour
	TokenType  = "bearer"
)

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Username    string    `json:"username"`
	ExpiresAt   time.Time `json:"-"`
}

type Service struct {
	users     ports.CredentialStore
	secret    []byte
	ttl       time.Duration
	dummyHash []byte
	log       *zap.Logger

	Now func() time.Time
}

func NewService(users ports.CredentialStore, secret string, ttl time.Duration, log *zap.Logger) (*Service, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Service{
		users:     users,
		secret:    []byte(secret),
		ttl:       ttl,
		dummyHash: dummy,
		log:       logger.OrNop(log),
		Now:       time.Now,
	}, nil
}

// Issue verifies the password and mints a signed token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Issue(ctx context.Context, username, password string) (*Token, error) {
	cred, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.From(err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		s.log.Info("[AUTH][LOGIN] rejected", zap.String("username", username))
		return nil, apperr.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.HashedPassword), []byte(password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		s.log.Info("[AUTH][LOGIN] rejected", zap.String("username", username))
		return nil, apperr.ErrInvalidCredentials
	}

	now := s.Now()
	exp := now.Add(s.ttl)
	// exp is carried in whole seconds; round up so the token never expires early.
	if t := exp.Truncate(time.Second); !t.Equal(exp) {
		exp = t.Add(time.Second)
	}
	claims := jwt.RegisteredClaims{
		Subject:   cred.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("accepted").Inc()
	s.log.Info("[AUTH][LOGIN] accepted", zap.String("username", cred.Username))
	return &Token{AccessToken: signed, TokenType: TokenType, Username: cred.Username, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Authenticate validates signature, algorithm and expiry and returns the
// token subject.
func (s *Service) Authenticate(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", apperr.ErrTokenExpired
	case err != nil:
		return "", apperr.ErrTokenInvalid.WithError(err)
	case claims.Subject == "":
		return "", apperr.ErrTokenInvalid
	}
	return claims.Subject, nil
}

func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
