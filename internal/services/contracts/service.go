package contracts

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/ports"
)

const (
	SortByDate     = "date"
	SortByCustomer = "customer"
	SortByAmount   = "amount"

	StatusAll = "all"
)

type ListParams struct {
	Search string
	Status string
	SortBy string
}

type Service struct {
	store ports.ContractReader
	log   *zap.Logger
}

func NewService(store ports.ContractReader, log *zap.Logger) *Service {
	return &Service{store: store, log: logger.OrNop(log)}
}

func (s *Service) List(ctx context.Context, p ListParams) ([]models.ContractSummary, error) {
	f := ports.ContractFilter{Search: p.Search, Status: p.Status}
	if f.Status == StatusAll {
		f.Status = ""
	}

	items, err := s.store.Find(ctx, f)
	if err != nil {
		s.log.Error("[CONTRACTS][LIST] store failed", zap.Error(err))
		return nil, apperr.From(err)
	}

	out := make([]models.ContractSummary, 0, len(items))
	for _, c := range items {
		out = append(out, Summarize(c))
	}
	SortSummaries(out, p.SortBy)
	return out, nil
}

func (s *Service) Detail(ctx context.Context, id string) (*models.Contract, error) {
	c, err := s.store.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Contract not found")
	}
	if err != nil {
		s.log.Error("[CONTRACTS][DETAIL] store failed", zap.String("id", id), zap.Error(err))
		return nil, apperr.From(err)
	}
	return c, nil
}

func Summarize(c models.Contract) models.ContractSummary {
	company := c.CompanyName
	if company == "" {
		company = models.DefaultCompanyName
	}
	return models.ContractSummary{
		ID:                  c.ID,
		ContractNumber:      c.ContractNumber,
		CustomerName:        c.Customer.Name,
		VehicleRegistration: c.Vehicle.RegistrationNumber,
		CompanyName:         company,
		Status:              c.Status,
		OutstandingAmount:   c.Loan.OutstandingAmount,
		EMIAmount:           c.Loan.EMIAmount,
		ContractDate:        c.ContractDate,
	}
}

// SortSummaries orders items in place. Unknown keys fall back to date.
// Ties keep their incoming order.
func SortSummaries(items []models.ContractSummary, sortBy string) {
	var less func(a, b models.ContractSummary) bool
	switch sortBy {
	case SortByCustomer:
		less = func(a, b models.ContractSummary) bool { return a.CustomerName < b.CustomerName }
	case SortByAmount:
		less = func(a, b models.ContractSummary) bool { return a.OutstandingAmount > b.OutstandingAmount }
	default:
		less = func(a, b models.ContractSummary) bool { return a.ContractDate > b.ContractDate }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
