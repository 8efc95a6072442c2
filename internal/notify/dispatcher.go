package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mthomps/restock/internal/model"
	"github.com/mthomps/restock/internal/store"
)

// Dispatcher periodically delivers due scheduled notifications to every
// registered push subscription. Delivery is best-effort: a failed send is
// logged and never retried.
type Dispatcher struct {
	mu        sync.RWMutex
	service   *Service
	queue     *store.NotificationStore
	reminders *store.ReminderStore
	push      *store.PushStore
	interval  time.Duration
	logger    *slog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewDispatcher creates a notification dispatcher ticking at the given interval.
func NewDispatcher(svc *Service, queue *store.NotificationStore, reminders *store.ReminderStore, push *store.PushStore, interval time.Duration, logger *slog.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Dispatcher{
		service:   svc,
		queue:     queue,
		reminders: reminders,
		push:      push,
		interval:  interval,
		logger:    logger,
	}
}

// Start begins the dispatch loop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	d.mu.Unlock()

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.Tick(time.Now())
			}
		}
	}()
}

// Stop gracefully stops the dispatcher.
func (d *Dispatcher) Stop() {
	d.mu.RLock()
	cancel := d.cancel
	done := d.done
	d.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tick delivers every notification due at the given time and marks it fired.
func (d *Dispatcher) Tick(now time.Time) {
	due, err := d.queue.ListDue(now)
	if err != nil {
		d.logger.Error("list due notifications", "error", err)
		return
	}

	for _, n := range due {
		d.deliver(&n)
	}
}

func (d *Dispatcher) deliver(n *model.ScheduledNotification) {
	payload, err := renderPayload(n)
	if err != nil {
		d.logger.Error("render notification payload", "id", n.ID, "error", err)
		// A malformed row would be redelivered forever; retire it.
		if err := d.queue.MarkFired(n.ID); err != nil {
			d.logger.Error("mark notification fired", "id", n.ID, "error", err)
		}
		return
	}

	subs, err := d.push.List()
	if err != nil {
		d.logger.Error("list push subscriptions", "error", err)
		return
	}

	for _, sub := range subs {
		if err := d.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := d.push.DeleteByEndpoint(sub.Endpoint); err != nil {
					d.logger.Error("delete expired subscription", "error", err)
				}
			} else {
				d.logger.Error("send notification", "id", n.ID, "kind", n.Kind, "error", err)
			}
		}
	}

	if err := d.queue.MarkFired(n.ID); err != nil {
		d.logger.Error("mark notification fired", "id", n.ID, "error", err)
		return
	}

	if n.Kind == model.NotifKindReminder && n.Product != "" {
		if err := d.reminders.SetState(n.Product, model.ReminderFired); err != nil {
			d.logger.Error("set reminder state", "product", n.Product, "error", err)
		}
	}

	d.logger.Info("notification delivered", "id", n.ID, "kind", n.Kind, "product", n.Product)
}

// renderPayload builds the user-facing push payload for a queued notification.
func renderPayload(n *model.ScheduledNotification) (Payload, error) {
	switch n.Kind {
	case model.NotifKindReminder:
		var p model.ReminderPayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return Payload{}, fmt.Errorf("decode reminder payload: %w", err)
		}
		return Payload{
			Title: "Grocery Reminder",
			Body:  fmt.Sprintf("Time to buy %s again!", p.Product),
			Tag:   "reminder-" + p.Product,
			Data:  n.Payload,
		}, nil
	case model.NotifKindUnpurchased:
		var p model.UnpurchasedPayload
		if err := json.Unmarshal(n.Payload, &p); err != nil {
			return Payload{}, fmt.Errorf("decode unpurchased payload: %w", err)
		}
		body := fmt.Sprintf("%d items from %s were never purchased", len(p.Items), p.Date)
		if len(p.Items) == 1 {
			body = fmt.Sprintf("1 item from %s was never purchased", p.Date)
		}
		return Payload{
			Title: "Unpurchased Items",
			Body:  body,
			Tag:   "unpurchased-" + p.Date,
			Data:  n.Payload,
		}, nil
	default:
		return Payload{}, fmt.Errorf("unknown notification kind %q", n.Kind)
	}
}
