package model

import (
	"encoding/json"
	"time"
)

// Notification kinds.
const (
	NotifKindReminder    = "reminder"
	NotifKindUnpurchased = "unpurchased_items"
)

// ScheduledNotification is a queued one-shot notification awaiting delivery
// by the dispatcher. Product is empty for non-reminder kinds.
type ScheduledNotification struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Product   string          `json:"product,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	DeliverAt time.Time       `json:"deliver_at"`
	Fired     bool            `json:"fired"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReminderPayload is carried by repurchase reminder notifications.
type ReminderPayload struct {
	Product      string  `json:"product"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	IntervalDays int     `json:"intervalDays"`
}

// UnpurchasedPayload is carried by unpurchased-sweep notifications.
type UnpurchasedPayload struct {
	Type  string   `json:"type"`
	Date  string   `json:"date"`
	Items []string `json:"items"`
}
