package handler

import (
	"net/http"

	"github.com/marlinhq/marlin/internal/api/response"
	"github.com/marlinhq/marlin/internal/strategy"
)

// StrategiesHandler lists the registered strategies.
type StrategiesHandler struct {
	registry *strategy.Registry
}

// NewStrategiesHandler creates a new strategies handler.
func NewStrategiesHandler(registry *strategy.Registry) *StrategiesHandler {
	return &StrategiesHandler{registry: registry}
}

// List returns every registered strategy with its default parameters.
func (h *StrategiesHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"strategies": h.registry.List(),
	})
}
