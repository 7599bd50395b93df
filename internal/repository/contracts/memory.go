package contracts

import (
	"context"
	"fmt"
	"sync"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/ports"
)

// MemoryRepository keeps contracts in insertion order. It backs
// STORE_DRIVER=memory and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []models.Contract
	byID  map[string]int
	limit int
}

func NewMemoryRepository(limit int) *MemoryRepository {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryRepository{byID: map[string]int{}, limit: limit}
}

func (r *MemoryRepository) Find(_ context.Context, f ports.ContractFilter) ([]models.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Contract, 0)
	for _, c := range r.items {
		if len(out) >= r.limit {
			break
		}
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, apperr.NotFound("Contract not found")
	}
	c := r.items[i]
	return &c, nil
}

func (r *MemoryRepository) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

func (r *MemoryRepository) InsertMany(_ context.Context, items []models.Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	for _, c := range r.items {
		seen[c.ContractNumber] = true
	}
	ids := map[string]bool{}
	for _, c := range items {
		if _, dup := r.byID[c.ID]; dup || ids[c.ID] {
			return fmt.Errorf("duplicate contract id %q", c.ID)
		}
		if seen[c.ContractNumber] {
			return fmt.Errorf("duplicate contract number %q", c.ContractNumber)
		}
		ids[c.ID] = true
		seen[c.ContractNumber] = true
	}
	for _, c := range items {
		r.byID[c.ID] = len(r.items)
		r.items = append(r.items, c)
	}
	return nil
}
