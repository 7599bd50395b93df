package handlers

import "net/http"

// Empty fields are left to the auth service so they fail like any other
// unknown credential.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Error(w, r, err)
		return
	}

	tok, err := h.Auth.Issue(r.Context(), req.Username, req.Password)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, tok)
}
