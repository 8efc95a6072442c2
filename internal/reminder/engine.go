// Package reminder implements the repurchase reminder engine: it maintains
// reminder definitions, computes trigger times from purchase events, keeps at
// most one pending notification per product, and reconciles newly configured
// reminders against already-recorded purchase history.
package reminder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mthomps/restock/internal/model"
	"github.com/mthomps/restock/internal/store"
)

// PermissionSource reports whether notifications may currently be scheduled.
type PermissionSource interface {
	Granted() (bool, error)
}

// Definition is the user input for a reminder rule.
type Definition struct {
	Product      string  `json:"product"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	IntervalDays int     `json:"interval_days"`
}

// Validate checks a definition for well-formedness.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Product) == "" {
		return fmt.Errorf("product is required")
	}
	if d.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if !model.ValidUnit(d.Unit) {
		return fmt.Errorf("unit must be one of kg, liter, piece")
	}
	if d.IntervalDays <= 0 {
		return fmt.Errorf("interval days must be positive")
	}
	return nil
}

// Engine coordinates reminder definitions, purchase records, and the
// scheduled notification queue.
type Engine struct {
	items     *store.ItemStore
	purchases *store.PurchaseStore
	reminders *store.ReminderStore
	queue     *store.NotificationStore
	perm      PermissionSource
	logger    *slog.Logger
}

func NewEngine(items *store.ItemStore, purchases *store.PurchaseStore, reminders *store.ReminderStore, queue *store.NotificationStore, perm PermissionSource, logger *slog.Logger) *Engine {
	return &Engine{
		items:     items,
		purchases: purchases,
		reminders: reminders,
		queue:     queue,
		perm:      perm,
		logger:    logger,
	}
}

// Trigger computes the notification time for a purchase: the purchase
// timestamp plus the whole-day interval. The interval is fixed; it does not
// scale with the quantity purchased. Arithmetic is on the epoch value only,
// at millisecond precision.
func Trigger(intervalDays int, purchasedAt time.Time) time.Time {
	return time.UnixMilli(purchasedAt.UnixMilli()).Add(time.Duration(intervalDays) * 24 * time.Hour)
}

// AddReminder stores a definition, replacing any prior one for the same
// product, and immediately reconciles it against recorded purchase history.
func (e *Engine) AddReminder(def Definition) (*model.Reminder, error) {
	return e.addReminder(def, true)
}

// ImportReminder stores a definition without the retroactive check. Used for
// bulk restores so a startup import cannot flood the queue.
func (e *Engine) ImportReminder(def Definition) (*model.Reminder, error) {
	return e.addReminder(def, false)
}

func (e *Engine) addReminder(def Definition, retroactive bool) (*model.Reminder, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	def.Product = strings.TrimSpace(def.Product)
	rem, err := e.reminders.Put(def.Product, def.Quantity, def.Unit, def.IntervalDays)
	if err != nil {
		return nil, err
	}

	if retroactive {
		// Notification failures never roll back the stored definition.
		if err := e.CheckRetroactive(rem); err != nil {
			e.logger.Warn("retroactive reminder check failed", "product", rem.Product, "error", err)
		}
	}
	return rem, nil
}

// RemoveReminder deletes the definition for a product and cancels any
// notification still queued for it.
func (e *Engine) RemoveReminder(product string) error {
	if _, err := e.queue.CancelByProduct(product); err != nil {
		return err
	}
	return e.reminders.Delete(product)
}

// ScheduleProductReminder queues a repurchase notification for a purchase
// event, replacing any notification already queued for the product. Denied
// permission and already-elapsed triggers are logged no-ops.
func (e *Engine) ScheduleProductReminder(rem *model.Reminder, purchasedAt time.Time, quantityPurchased float64) error {
	granted, err := e.perm.Granted()
	if err != nil {
		return fmt.Errorf("query notification permission: %w", err)
	}
	if !granted {
		e.logger.Info("notification permission not granted, skipping", "product", rem.Product)
		return nil
	}

	trigger := Trigger(rem.IntervalDays, purchasedAt)
	if !trigger.After(time.Now()) {
		e.logger.Info("trigger already elapsed, skipping", "product", rem.Product, "trigger", trigger)
		return nil
	}

	// At most one pending notification per product.
	if _, err := e.queue.CancelByProduct(rem.Product); err != nil {
		return err
	}

	payload, err := json.Marshal(model.ReminderPayload{
		Product:      rem.Product,
		Quantity:     quantityPurchased,
		Unit:         rem.Unit,
		IntervalDays: rem.IntervalDays,
	})
	if err != nil {
		return fmt.Errorf("marshal reminder payload: %w", err)
	}

	if _, err := e.queue.Enqueue(model.NotifKindReminder, rem.Product, payload, trigger); err != nil {
		return err
	}
	if err := e.reminders.SetState(rem.Product, model.ReminderPending); err != nil {
		return err
	}

	e.logger.Info("reminder scheduled", "product", rem.Product, "trigger", trigger)
	return nil
}

// CheckRetroactive schedules a notification for a reminder whose product was
// purchased within the still-open repurchase window. A purchase older than
// the interval is moot: the reminder applies to the next purchase instead.
func (e *Engine) CheckRetroactive(rem *model.Reminder) error {
	rec, err := e.purchases.Get(rem.Product)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	purchasedAt, err := ParseDate(rec.PurchasedOn)
	if err != nil {
		return fmt.Errorf("parse purchase date %q: %w", rec.PurchasedOn, err)
	}

	daysSince := int(time.Since(purchasedAt).Hours() / 24)
	if daysSince >= rem.IntervalDays {
		e.logger.Info("purchase predates interval, not scheduling", "product", rem.Product, "days_since", daysSince)
		return nil
	}

	// Schedule from the original purchase timestamp so only the remaining
	// days elapse before firing.
	return e.ScheduleProductReminder(rem, purchasedAt, rem.Quantity)
}

// Reconcile re-runs the retroactive check for every stored reminder. Run at
// startup so definitions written while notifications were disabled, or while
// the process was down, still get their window honored. Scheduling is
// idempotent, so reconciling an already-queued reminder is harmless.
func (e *Engine) Reconcile() error {
	rems, err := e.reminders.List()
	if err != nil {
		return err
	}
	for i := range rems {
		if err := e.CheckRetroactive(&rems[i]); err != nil {
			e.logger.Warn("reconcile reminder failed", "product", rems[i].Product, "error", err)
		}
	}
	return nil
}

// ItemPurchased records that an item was bought on a date and schedules a
// repurchase reminder if a matching definition exists. A missing item or
// reminder is a logged no-op.
func (e *Engine) ItemPurchased(itemID, date string) error {
	item, err := e.items.GetByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		e.logger.Info("purchased item not found", "id", itemID)
		return nil
	}

	if err := e.purchases.Record(item.Name, date); err != nil {
		return err
	}

	rem, err := e.reminders.Get(item.Name)
	if err != nil {
		return err
	}
	if rem == nil || item.Quantity <= 0 {
		return nil
	}

	purchasedAt, err := ParseDate(date)
	if err != nil {
		return fmt.Errorf("parse purchase date %q: %w", date, err)
	}

	if err := e.ScheduleProductReminder(rem, purchasedAt, item.Quantity); err != nil {
		e.logger.Warn("schedule reminder failed", "product", rem.Product, "error", err)
	}
	return nil
}

// ItemsPurchased marks a batch of items purchased for a date. Each item goes
// through the same per-item path; individual misses are logged no-ops.
func (e *Engine) ItemsPurchased(itemIDs []string, date string) error {
	for _, id := range itemIDs {
		if err := e.ItemPurchased(id, date); err != nil {
			return err
		}
	}
	return nil
}

// ItemDeleted prunes purchase records orphaned by an item deletion. The
// reminder definition and any queued notification stay: deleting a list
// entry does not retract the rule behind it.
func (e *Engine) ItemDeleted() error {
	pruned, err := e.purchases.PruneOrphans()
	if err != nil {
		return err
	}
	if pruned > 0 {
		e.logger.Info("pruned orphaned purchase records", "count", pruned)
	}
	return nil
}

// ParseDate interprets a YYYY-MM-DD calendar date as local midnight.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", date, time.Local)
}
