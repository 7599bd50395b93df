package credentials

import (
	"context"
	"fmt"
	"sync"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.Credential
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: map[string]models.Credential{}}
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.users[username]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &c, nil
}

func (r *MemoryRepository) Create(_ context.Context, c models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.users[c.Username]; dup {
		return fmt.Errorf("duplicate username %q", c.Username)
	}
	r.users[c.Username] = c
	return nil
}
