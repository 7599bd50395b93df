package response

import (
	"encoding/json"
	"net/http"

	"vehicle_finance/internal/apperr"
)

type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err as {"detail","code"}. Errors that are not *apperr.Error
// are reported as upstream faults without leaking their text.
func Error(w http.ResponseWriter, err error) {
	ae := apperr.From(err)
	if ae.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	JSON(w, ae.Status, ErrorBody{Detail: ae.Message, Code: string(ae.Code)})
}

// CORS answers preflight requests and allows any origin, matching the
// mobile client's needs.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
