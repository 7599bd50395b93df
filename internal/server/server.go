package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vehicle_finance/internal/handlers"
	"vehicle_finance/internal/metrics"
	"vehicle_finance/internal/transport/auth"
	"vehicle_finance/internal/transport/response"
)

type Server struct {
	httpServer *http.Server
}

// NewRouter wires the public and bearer-protected routes. The /api prefix
// matches the mobile client's base URL.
func NewRouter(h *handlers.Handlers) http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/seed-data", h.Seed).Methods(http.MethodPost)

	protected := api.PathPrefix("/contracts").Subrouter()
	protected.Use(auth.BearerMiddleware(h.Auth, h.Logger))
	protected.HandleFunc("", h.ListContracts).Methods(http.MethodGet)
	protected.HandleFunc("/{id}", h.GetContract).Methods(http.MethodGet)

	return response.CORS(r)
}

func NewServer(port string, h *handlers.Handlers) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      NewRouter(h),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
