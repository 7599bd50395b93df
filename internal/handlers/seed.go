package handlers

import "net/http"

func (h *Handlers) Seed(w http.ResponseWriter, r *http.Request) {
	res, err := h.Seeder.Seed(r.Context())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, res)
}
