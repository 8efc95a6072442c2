package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mthomps/restock/internal/model"
	"github.com/mthomps/restock/internal/notify"
	"github.com/mthomps/restock/internal/store"
)

type PushHandler struct {
	svc      *notify.Service
	push     *store.PushStore
	settings *store.SettingsStore
	queue    *store.NotificationStore
	logger   *slog.Logger
}

func NewPushHandler(svc *notify.Service, push *store.PushStore, settings *store.SettingsStore, queue *store.NotificationStore, logger *slog.Logger) *PushHandler {
	return &PushHandler{svc: svc, push: push, settings: settings, queue: queue, logger: logger}
}

// VAPIDKey returns the public key the browser needs to create a subscription.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.svc.VAPIDPublicKey()})
}

type subscribeRequest struct {
	Endpoint   string        `json:"endpoint"`
	Keys       subscribeKeys `json:"keys"`
	DeviceName string        `json:"device_name"`
}

type subscribeKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Endpoint = strings.TrimSpace(req.Endpoint)
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	sub, err := h.push.CreateSubscription(req.Endpoint, req.Keys.P256dh, req.Keys.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Endpoint) == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	if err := h.push.DeleteByEndpoint(req.Endpoint); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.push.List()
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *PushHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.settings.NotificationsEnabled()
	if err != nil {
		h.logger.Error("read notification setting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"notifications_enabled": enabled})
}

type settingsRequest struct {
	NotificationsEnabled bool `json:"notifications_enabled"`
}

func (h *PushHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.settings.SetNotificationsEnabled(req.NotificationsEnabled); err != nil {
		h.logger.Error("update notification setting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"notifications_enabled": req.NotificationsEnabled})
}

type tapRequest struct {
	ID int64 `json:"id"`
}

// Tap resolves a delivered notification to the view the client should open:
// repurchase reminders route to the add-item form prefilled from the payload,
// unpurchased sweeps route to the list for the affected date.
func (h *PushHandler) Tap(w http.ResponseWriter, r *http.Request) {
	var req tapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	notif, err := h.queue.GetByID(req.ID)
	if err != nil {
		h.logger.Error("get notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get notification")
		return
	}
	if notif == nil {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}

	switch notif.Kind {
	case model.NotifKindReminder:
		var p model.ReminderPayload
		if err := json.Unmarshal(notif.Payload, &p); err != nil {
			writeError(w, http.StatusInternalServerError, "malformed notification payload")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"route": "add_item",
			"prefill": map[string]any{
				"name":     p.Product,
				"quantity": p.Quantity,
				"unit":     p.Unit,
			},
		})
	case model.NotifKindUnpurchased:
		var p model.UnpurchasedPayload
		if err := json.Unmarshal(notif.Payload, &p); err != nil {
			writeError(w, http.StatusInternalServerError, "malformed notification payload")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"route": "list",
			"date":  p.Date,
			"items": p.Items,
		})
	default:
		writeError(w, http.StatusInternalServerError, "unknown notification kind")
	}
}
