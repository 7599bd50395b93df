package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"vehicle_finance/internal/services/contracts"
)

func (h *Handlers) ListContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Contracts.List(r.Context(), contracts.ListParams{
		Search: q.Get("search"),
		Status: q.Get("status_filter"),
		SortBy: q.Get("sort_by"),
	})
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, items)
}

func (h *Handlers) GetContract(w http.ResponseWriter, r *http.Request) {
	c, err := h.Contracts.Detail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, c)
}
