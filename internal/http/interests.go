package http

import (
	"net/http"

	"github.com/mattyapp/matty-api/internal/observability/logger"
)

type interestDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GET /v1/interests
func (d *Deps) ListInterests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := d.Interests.List(ctx)
	if err != nil {
		logger.From(ctx).Error("list interests failed", logger.Err(err))
		WriteError(w, http.StatusInternalServerError, CodeInternal, "")
		return
	}
	out := make([]interestDTO, 0, len(items))
	for _, it := range items {
		out = append(out, interestDTO{ID: it.ID, Name: it.Name})
	}
	WriteJSON(w, http.StatusOK, out)
}
