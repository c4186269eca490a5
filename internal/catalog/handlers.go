package catalog

import (
	"net/http"

	"github.com/treatly/backend-treats/internal/common"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	Service *Service
}

// List returns every catalog item.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog not configured", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"treats": h.Service.List()},
	})
}
