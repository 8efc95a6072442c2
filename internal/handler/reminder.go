package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mthomps/restock/internal/model"
	"github.com/mthomps/restock/internal/reminder"
	"github.com/mthomps/restock/internal/store"
	"github.com/mthomps/restock/internal/websocket"
)

type ReminderHandler struct {
	engine    *reminder.Engine
	reminders *store.ReminderStore
	queue     *store.NotificationStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewReminderHandler(engine *reminder.Engine, reminders *store.ReminderStore, queue *store.NotificationStore, hub *websocket.Hub, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{engine: engine, reminders: reminders, queue: queue, hub: hub, logger: logger}
}

func (h *ReminderHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type reminderRequest struct {
	Product      string  `json:"product"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	IntervalDays int     `json:"interval_days"`
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	rems, err := h.reminders.List()
	if err != nil {
		h.logger.Error("list reminders", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	if rems == nil {
		rems = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, rems)
}

// Put stores a reminder definition for a product, replacing any prior one,
// and reconciles it against the purchase history.
func (h *ReminderHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	rem, err := h.engine.AddReminder(reminder.Definition{
		Product:      req.Product,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		IntervalDays: req.IntervalDays,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.broadcast(websocket.NewMessage("reminder", "updated", rem.Product, nil))
	writeJSON(w, http.StatusOK, rem)
}

type importRequest struct {
	Reminders []reminderRequest `json:"reminders"`
}

// Import restores a batch of definitions without triggering retroactive
// notifications, so restoring a backup cannot flood the queue.
func (h *ReminderHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Reminders) == 0 {
		writeError(w, http.StatusBadRequest, "reminders are required")
		return
	}

	imported := 0
	for _, rr := range req.Reminders {
		_, err := h.engine.ImportReminder(reminder.Definition{
			Product:      rr.Product,
			Quantity:     rr.Quantity,
			Unit:         rr.Unit,
			IntervalDays: rr.IntervalDays,
		})
		if err != nil {
			h.logger.Warn("skipping reminder import", "product", rr.Product, "error", err)
			continue
		}
		imported++
	}

	h.broadcast(websocket.NewMessage("reminder", "imported", "", map[string]any{"count": imported}))
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// Delete removes the definition for a product and cancels any notification
// still queued for it.
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	product := strings.TrimSpace(r.PathValue("product"))
	if product == "" {
		writeError(w, http.StatusBadRequest, "product is required")
		return
	}

	existing, err := h.reminders.Get(product)
	if err != nil {
		h.logger.Error("get reminder", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get reminder")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "reminder not found")
		return
	}

	if err := h.engine.RemoveReminder(product); err != nil {
		h.logger.Error("remove reminder", "product", product, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove reminder")
		return
	}

	h.broadcast(websocket.NewMessage("reminder", "deleted", product, nil))
	w.WriteHeader(http.StatusNoContent)
}

// ListScheduled exposes the pending notification queue. Mainly useful for
// inspecting what the dispatcher is going to fire.
func (h *ReminderHandler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	notifs, err := h.queue.ListPending()
	if err != nil {
		h.logger.Error("list scheduled notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifs == nil {
		notifs = []model.ScheduledNotification{}
	}
	writeJSON(w, http.StatusOK, notifs)
}

// CancelScheduled removes one queued notification without touching the
// reminder definition behind it.
func (h *ReminderHandler) CancelScheduled(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	notif, err := h.queue.GetByID(id)
	if err != nil {
		h.logger.Error("get notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get notification")
		return
	}
	if notif == nil || notif.Fired {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}

	if err := h.queue.CancelByID(id); err != nil {
		h.logger.Error("cancel notification", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to cancel notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
