package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mthomps/restock/internal/store"
	"github.com/mthomps/restock/internal/suggest"
)

const suggestionLimit = 8

type SuggestHandler struct {
	items  *store.ItemStore
	logger *slog.Logger
}

func NewSuggestHandler(items *store.ItemStore, logger *slog.Logger) *SuggestHandler {
	return &SuggestHandler{items: items, logger: logger}
}

// Suggestions returns name completions for a partial query, ranking the
// user's own history above the built-in item list.
func (h *SuggestHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, []string{})
		return
	}

	history, err := h.items.DistinctNames()
	if err != nil {
		h.logger.Error("load item history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load suggestions")
		return
	}

	results := suggest.Suggest(query, history, suggestionLimit)
	if results == nil {
		results = []string{}
	}
	writeJSON(w, http.StatusOK, results)
}
