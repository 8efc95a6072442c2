package model

import "time"

// ReminderState tracks the notification lifecycle of a reminder. It is
// driven only by the scheduling and delivery side effects.
type ReminderState string

const (
	ReminderIdle    ReminderState = "idle"    // no notification queued
	ReminderPending ReminderState = "pending" // one notification queued
	ReminderFired   ReminderState = "fired"   // last queued notification delivered
)

// Reminder is a user rule mapping a product name to a repurchase interval.
// At most one reminder exists per product name (case-insensitive).
type Reminder struct {
	Product      string        `json:"product"`
	Quantity     float64       `json:"quantity"`
	Unit         string        `json:"unit"`
	IntervalDays int           `json:"interval_days"`
	State        ReminderState `json:"state"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// PurchaseRecord is the last-known purchase date for a product name.
type PurchaseRecord struct {
	Product     string    `json:"product"`
	PurchasedOn string    `json:"purchased_on"`
	UpdatedAt   time.Time `json:"updated_at"`
}
