package handler

import (
	"net/http"
	"strconv"

	"github.com/marlinhq/marlin/internal/api/response"
	"github.com/marlinhq/marlin/internal/storage/results"
)

// ResultsHandler serves completed backtest results.
type ResultsHandler struct {
	store results.Store
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(store results.Store) *ResultsHandler {
	return &ResultsHandler{store: store}
}

// List returns result summaries, newest first, with optional symbol,
// strategy, limit and offset query parameters.
func (h *ResultsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := results.ListFilter{
		Symbol:   q.Get("symbol"),
		Strategy: q.Get("strategy"),
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	summaries, err := h.store.List(r.Context(), filter)
	if err != nil {
		response.Error(w, response.ErrorStatus(err), err)
		return
	}
	total, err := h.store.Count(r.Context(), filter)
	if err != nil {
		response.Error(w, response.ErrorStatus(err), err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"results": summaries,
		"total":   total,
	})
}

// Get returns one full result by run ID.
func (h *ResultsHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.ErrorStatus(err), err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
