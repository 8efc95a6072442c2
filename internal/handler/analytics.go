package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mthomps/restock/internal/model"
	"github.com/mthomps/restock/internal/store"
)

type AnalyticsHandler struct {
	analytics *store.AnalyticsStore
	logger    *slog.Logger
}

func NewAnalyticsHandler(analytics *store.AnalyticsStore, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// Monthly returns item counts per calendar month, zero-filled, oldest first.
func (h *AnalyticsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 36 {
			writeError(w, http.StatusBadRequest, "months must be between 1 and 36")
			return
		}
		months = n
	}

	counts, err := h.analytics.MonthlyCounts(time.Now(), months)
	if err != nil {
		h.logger.Error("monthly counts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute monthly counts")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Shops returns item counts grouped by shop, busiest first.
func (h *AnalyticsHandler) Shops(w http.ResponseWriter, r *http.Request) {
	counts, err := h.analytics.ShopCounts()
	if err != nil {
		h.logger.Error("shop counts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute shop counts")
		return
	}
	if counts == nil {
		counts = []model.ShopCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}

// Purchases returns the purchased versus never-purchased breakdown.
func (h *AnalyticsHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.analytics.PurchaseBreakdown()
	if err != nil {
		h.logger.Error("purchase breakdown", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute purchase breakdown")
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// TopItems returns the most frequently listed item names.
func (h *AnalyticsHandler) TopItems(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	items, err := h.analytics.TopItems(limit)
	if err != nil {
		h.logger.Error("top items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute top items")
		return
	}
	if items == nil {
		items = []model.ItemFrequency{}
	}
	writeJSON(w, http.StatusOK, items)
}
