package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vehicle_finance/internal/models"
	"vehicle_finance/internal/ports"
	"vehicle_finance/internal/repository/contracts"
	contractsvc "vehicle_finance/internal/services/contracts"
)

func TestHealthReportsFailures(t *testing.T) {
	h := New(nil, nil, nil, []HealthCheck{
		{Name: "mongo", Ping: func(context.Context) error { return nil }},
		{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
		{Name: "s3"},
	}, zaptest.NewLogger(t))

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"ok":false,"errors":["redis ping failed: connection refused","s3 not initialized"]}`, rr.Body.String())
}

func TestGetContractReadsPathID(t *testing.T) {
	store := contracts.NewMemoryRepository(0)
	require.NoError(t, store.InsertMany(context.Background(), []models.Contract{
		{ID: "abc", ContractNumber: "VF20230001", Status: "active"},
	}))
	h := New(nil, contractsvc.NewService(store, nil), nil, nil, zaptest.NewLogger(t))

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/contracts/abc", nil), map[string]string{"id": "abc"})
	rr := httptest.NewRecorder()
	h.GetContract(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"contract_number":"VF20230001"`)
}

func TestListContractsUpstreamFailure(t *testing.T) {
	h := New(nil, contractsvc.NewService(brokenStore{}, nil), nil, nil, zaptest.NewLogger(t))

	rr := httptest.NewRecorder()
	h.ListContracts(rr, httptest.NewRequest(http.MethodGet, "/api/contracts", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"UPSTREAM_UNAVAILABLE"`)
	assert.NotContains(t, rr.Body.String(), "server selection")
}

type brokenStore struct{}

func (brokenStore) Find(context.Context, ports.ContractFilter) ([]models.Contract, error) {
	return nil, errors.New("server selection error: context deadline exceeded")
}

func (brokenStore) FindByID(context.Context, string) (*models.Contract, error) {
	return nil, errors.New("server selection error: context deadline exceeded")
}
