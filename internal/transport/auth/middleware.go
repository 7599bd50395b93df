package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"vehicle_finance/internal/apperr"
	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/transport/response"
)

type ctxKey string

const UsernameKey ctxKey = "username"

type TokenAuthenticator interface {
	Authenticate(token string) (string, error)
}

var errMissingToken = apperr.ErrTokenInvalid.WithMessage("Not authenticated")

// BearerMiddleware admits requests carrying a valid bearer token and stores
// the token subject in the request context.
func BearerMiddleware(a TokenAuthenticator, log *zap.Logger) func(http.Handler) http.Handler {
	log = logger.OrNop(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// allow OPTIONS (CORS preflight) to pass through
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				response.Error(w, errMissingToken)
				return
			}

			username, err := a.Authenticate(token)
			if err != nil {
				log.Info("[AUTH] token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				response.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), UsernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func GetUsername(ctx context.Context) (string, error) {
	v, ok := ctx.Value(UsernameKey).(string)
	if !ok || v == "" {
		return "", errors.New("username not found in context")
	}
	return v, nil
}
