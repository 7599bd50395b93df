package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/services/auth"
	"vehicle_finance/internal/services/contracts"
	"vehicle_finance/internal/services/seed"
	"vehicle_finance/internal/transport/response"
)

const maxBodyBytes = 1 << 20

// HealthCheck pings one dependency.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handlers struct {
	Auth      *auth.Service
	Contracts *contracts.Service
	Seeder    *seed.Seeder
	Checks    []HealthCheck

	Logger *zap.Logger
}

func New(a *auth.Service, c *contracts.Service, s *seed.Seeder, checks []HealthCheck, log *zap.Logger) *Handlers {
	return &Handlers{
		Auth:      a,
		Contracts: c,
		Seeder:    s,
		Checks:    checks,
		Logger:    logger.OrNop(log),
	}
}

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	response.JSON(w, code, v)
}

// Error logs server-side faults and writes the error body.
func (h *Handlers) Error(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		h.Logger.Error("[HTTP][ERR] request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	response.Error(w, ae)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid JSON body").WithError(err)
	}
	return nil
}
