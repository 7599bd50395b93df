package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/ports"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Result struct {
	Message            string       `json:"message"`
	Created            bool         `json:"created"`
	ContractsCreated   int          `json:"contracts_created"`
	DefaultCredentials *Credentials `json:"default_credentials,omitempty"`
}

type PasswordHasher func(plain string) (string, error)

// Seeder is safe for concurrent use; calls to Seed are serialized.
type Seeder struct {
	mu        sync.Mutex
	contracts ports.ContractWriter
	users     ports.CredentialStore
	gen       *Generator
	hash      PasswordHasher
	log       *zap.Logger
}

func NewSeeder(contracts ports.ContractWriter, users ports.CredentialStore, gen *Generator, hash PasswordHasher, log *zap.Logger) *Seeder {
	if gen == nil {
		gen = NewGenerator(time.Now().UnixNano())
	}
	return &Seeder{contracts: contracts, users: users, gen: gen, hash: hash, log: logger.OrNop(log)}
}

// Seed bootstraps the default credential and a batch of sample contracts.
// It is a no-op when any contract already exists.
func (s *Seeder) Seed(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.contracts.Count(ctx)
	if err != nil {
		return nil, apperr.From(err)
	}
	if existing > 0 {
		return s.exists(existing), nil
	}

	if err := s.ensureUser(ctx, DefaultUsername, DefaultPassword); err != nil {
		return nil, err
	}

	items := s.gen.Generate()
	for _, c := range items {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("generated contract %s: %w", c.ContractNumber, err)
		}
	}
	if err := s.contracts.InsertMany(ctx, items); err != nil {
		// Another process may have seeded the same store first.
		if n, cerr := s.contracts.Count(ctx); cerr == nil && n > 0 {
			s.log.Warn("[SEED][RACE] insert lost to a concurrent seed", zap.Error(err))
			return s.exists(n), nil
		}
		return nil, apperr.From(err)
	}

	s.log.Info("[SEED][OK] sample data created", zap.Int("contracts", len(items)))
	return &Result{
		Message:          "Sample data created successfully",
		Created:          true,
		ContractsCreated: len(items),
		DefaultCredentials: &Credentials{
			Username: DefaultUsername,
			Password: DefaultPassword,
		},
	}, nil
}

func (s *Seeder) exists(n int64) *Result {
	s.log.Info("[SEED][SKIP] data already present", zap.Int64("contracts", n))
	return &Result{Message: fmt.Sprintf("Data already exists (%d contracts)", n)}
}

func (s *Seeder) ensureUser(ctx context.Context, username, password string) error {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return apperr.From(err)
	}

	hashed, err := s.hash(password)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	if err := s.users.Create(ctx, models.Credential{
		Username:       username,
		HashedPassword: hashed,
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		return apperr.From(err)
	}
	s.log.Info("[SEED][USER] default user created", zap.String("username", username))
	return nil
}
