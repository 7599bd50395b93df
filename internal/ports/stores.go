package ports

import (
	"context"
	"strings"

	"vehicle_finance/internal/models"
)

// ContractFilter narrows a contract listing. Empty fields disable the
// corresponding predicate.
type ContractFilter struct {
	Search string
	Status string
}

// Matches is the in-memory form of the filter: case-insensitive substring on
// customer name, contract number, vehicle make or model, and exact status.
func (f ContractFilter) Matches(c models.Contract) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, hay := range []string{c.Customer.Name, c.ContractNumber, c.Vehicle.Make, c.Vehicle.Model} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

type ContractReader interface {
	Find(ctx context.Context, f ContractFilter) ([]models.Contract, error)
	FindByID(ctx context.Context, id string) (*models.Contract, error)
}

type ContractWriter interface {
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, items []models.Contract) error
}

type ContractStore interface {
	ContractReader
	ContractWriter
}

type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Credential, error)
	Create(ctx context.Context, c models.Credential) error
}

type RunRecorder interface {
	Record(ctx context.Context, run models.MapperRun) error
}
