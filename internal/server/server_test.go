package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vehicle_finance/internal/handlers"
	"vehicle_finance/internal/models"
	"vehicle_finance/internal/repository/contracts"
	"vehicle_finance/internal/repository/credentials"
	authsvc "vehicle_finance/internal/services/auth"
	contractsvc "vehicle_finance/internal/services/contracts"
	"vehicle_finance/internal/services/seed"
	"vehicle_finance/internal/transport/response"
)

type testAPI struct {
	t      *testing.T
	router http.Handler
	auth   *authsvc.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zaptest.NewLogger(t)
	store := contracts.NewMemoryRepository(0)
	users := credentials.NewMemoryRepository()

	a, err := authsvc.NewService(users, "test-secret", time.Hour, log)
	require.NoError(t, err)

	h := handlers.New(
		a,
		contractsvc.NewService(store, log),
		seed.NewSeeder(store, users, seed.NewGenerator(3), authsvc.HashPassword, log),
		[]handlers.HealthCheck{{Name: "memory", Ping: func(context.Context) error { return nil }}},
		log,
	)
	return &testAPI{t: t, router: NewRouter(h), auth: a}
}

func (api *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	api.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(api.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	api.router.ServeHTTP(rr, req)
	return rr
}

func (api *testAPI) login() string {
	api.t.Helper()
	rr := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(api.t, http.StatusOK, rr.Code, rr.Body.String())

	var tok authsvc.Token
	require.NoError(api.t, json.Unmarshal(rr.Body.Bytes(), &tok))
	assert.Equal(api.t, "bearer", tok.TokenType)
	assert.Equal(api.t, "admin", tok.Username)
	return tok.AccessToken
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestEndToEnd(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodPost, "/api/seed-data", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var res seed.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, 10, res.ContractsCreated)

	token := api.login()

	rr = api.do(http.MethodGet, "/api/contracts?search=rajesh&status_filter=all", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.ContractSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Rajesh Kumar", list[0].CustomerName)
	assert.Equal(t, models.DefaultCompanyName, list[0].CompanyName)

	rr = api.do(http.MethodGet, "/api/contracts?sort_by=amount", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 10)
	for i := 1; i < len(list); i++ {
		assert.GreaterOrEqual(t, list[i-1].OutstandingAmount, list[i].OutstandingAmount)
	}

	rr = api.do(http.MethodGet, "/api/contracts/"+list[0].ID, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail models.Contract
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, list[0].ContractNumber, detail.ContractNumber)
	assert.Len(t, detail.PaymentSchedule, detail.Loan.TenureMonths)

	rr = api.do(http.MethodGet, "/api/contracts/does-not-exist", token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Contract not found", decodeError(t, rr).Detail)

	rr = api.do(http.MethodPost, "/api/seed-data", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Data already exists (10 contracts)")
}

func TestContractsRequireToken(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodGet, "/api/contracts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = api.do(http.MethodGet, "/api/contracts/x", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "TOKEN_INVALID", decodeError(t, rr).Code)
}

func TestExpiredTokenIsDistinguishable(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodPost, "/api/seed-data", "", nil)
	token := api.login()

	api.auth.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	rr := api.do(http.MethodGet, "/api/contracts", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "TOKEN_EXPIRED", decodeError(t, rr).Code)
}

func TestLoginFailures(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodPost, "/api/seed-data", "", nil)

	rr := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	wrongPassword := decodeError(t, rr)

	rr = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, wrongPassword, decodeError(t, rr))

	for _, body := range []map[string]string{
		{"username": "admin"},
		{"username": "", "password": "admin123"},
		{},
	} {
		rr = api.do(http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, wrongPassword, decodeError(t, rr))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreflightAndHealth(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodOptions, "/api/contracts", "", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())

	rr = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "vf_http_requests_total")
}
