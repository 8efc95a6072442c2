package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mthomps/restock/internal/model"
	"github.com/mthomps/restock/internal/reminder"
	"github.com/mthomps/restock/internal/store"
	"github.com/mthomps/restock/internal/websocket"
)

type ItemHandler struct {
	items     *store.ItemStore
	purchases *store.PurchaseStore
	engine    *reminder.Engine
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewItemHandler(items *store.ItemStore, purchases *store.PurchaseStore, engine *reminder.Engine, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, purchases: purchases, engine: engine, hub: hub, logger: logger}
}

func (h *ItemHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type itemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Shop     string  `json:"shop"`
	Date     string  `json:"date"`
}

func (r *itemRequest) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Shop = strings.TrimSpace(r.Shop)
	if r.Name == "" {
		return "name is required"
	}
	if r.Quantity <= 0 {
		return "quantity must be positive"
	}
	if !model.ValidUnit(r.Unit) {
		return "unit must be one of kg, liter, piece"
	}
	if !validDate(r.Date) {
		return "date must be YYYY-MM-DD"
	}
	return ""
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.items.Create(req.Name, req.Quantity, req.Unit, req.Shop, req.Date)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.broadcast(websocket.NewMessage("item", "created", item.ID, map[string]any{"date": item.Date}))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !validDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	items, err := h.items.ListByDate(date)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.GroceryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.items.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.items.Update(id, req.Name, req.Quantity, req.Unit, req.Shop, req.Date)
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.broadcast(websocket.NewMessage("item", "updated", item.ID, map[string]any{"date": item.Date}))
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.items.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.items.Delete(id); err != nil {
		h.logger.Error("delete item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if err := h.engine.ItemDeleted(); err != nil {
		h.logger.Warn("prune after delete", "error", err)
	}

	h.broadcast(websocket.NewMessage("item", "deleted", id, map[string]any{"date": existing.Date}))
	w.WriteHeader(http.StatusNoContent)
}

type purchaseRequest struct {
	Date string `json:"date"`
}

// Purchase marks one item purchased on a date, recording the purchase and
// scheduling a repurchase reminder if one is defined for the product.
func (h *ItemHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !validDate(req.Date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if err := h.engine.ItemPurchased(id, req.Date); err != nil {
		h.logger.Error("mark purchased", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark purchased")
		return
	}

	h.broadcast(websocket.NewMessage("item", "purchased", id, map[string]any{"date": req.Date}))
	w.WriteHeader(http.StatusNoContent)
}

type bulkItemsRequest struct {
	IDs  []string `json:"ids"`
	Date string   `json:"date"`
}

// PurchaseBulk marks a set of items purchased for a date. Used to resolve an
// unpurchased-items notification; safe to repeat.
func (h *ItemHandler) PurchaseBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if !validDate(req.Date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if err := h.engine.ItemsPurchased(req.IDs, req.Date); err != nil {
		h.logger.Error("bulk mark purchased", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark purchased")
		return
	}

	h.broadcast(websocket.NewMessage("purchase", "recorded", req.Date, map[string]any{"count": len(req.IDs)}))
	w.WriteHeader(http.StatusNoContent)
}

// Move reassigns a set of items to another date. Used to resolve an
// unpurchased-items notification by moving the items forward.
func (h *ItemHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req bulkItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if !validDate(req.Date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	moved, err := h.items.MoveToDate(req.IDs, req.Date)
	if err != nil {
		h.logger.Error("move items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to move items")
		return
	}

	h.broadcast(websocket.NewMessage("item", "moved", req.Date, map[string]any{"count": moved}))
	writeJSON(w, http.StatusOK, map[string]int64{"moved": moved})
}

// DeleteBulk permanently removes a set of items.
func (h *ItemHandler) DeleteBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	deleted, err := h.items.DeleteMany(req.IDs)
	if err != nil {
		h.logger.Error("bulk delete items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete items")
		return
	}
	if err := h.engine.ItemDeleted(); err != nil {
		h.logger.Warn("prune after bulk delete", "error", err)
	}

	h.broadcast(websocket.NewMessage("item", "deleted", "", map[string]any{"count": deleted}))
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// ListDates returns the history of dates that have items, newest first.
func (h *ItemHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.items.ListDates()
	if err != nil {
		h.logger.Error("list dates", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list dates")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, dates)
}

// ListUnpurchased returns the items on a date that were never marked purchased.
func (h *ItemHandler) ListUnpurchased(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !validDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	items, err := h.items.ListUnpurchasedByDate(date)
	if err != nil {
		h.logger.Error("list unpurchased", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list unpurchased items")
		return
	}
	if items == nil {
		items = []model.GroceryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.items.ListShops()
	if err != nil {
		h.logger.Error("list shops", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list shops")
		return
	}
	if shops == nil {
		shops = []model.Shop{}
	}
	writeJSON(w, http.StatusOK, shops)
}

func (h *ItemHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	recs, err := h.purchases.List()
	if err != nil {
		h.logger.Error("list purchases", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list purchases")
		return
	}
	if recs == nil {
		recs = []model.PurchaseRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
