package sweep

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mthomps/restock/internal/database"
	"github.com/mthomps/restock/internal/model"
	"github.com/mthomps/restock/internal/store"
)

type sweepFixture struct {
	checker   *Checker
	items     *store.ItemStore
	purchases *store.PurchaseStore
	markers   *store.SweepStore
	queue     *store.NotificationStore
}

func setupChecker(t *testing.T) *sweepFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &sweepFixture{
		items:     store.NewItemStore(db),
		purchases: store.NewPurchaseStore(db),
		markers:   store.NewSweepStore(db),
		queue:     store.NewNotificationStore(db),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.checker = NewChecker(f.items, f.markers, f.queue, logger)
	return f
}

func TestSweepRaisesNotificationForPastDate(t *testing.T) {
	f := setupChecker(t)
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

	a, _ := f.items.Create("Milk", 1, "liter", "", "2026-08-26")
	b, _ := f.items.Create("Eggs", 10, "piece", "", "2026-08-26")

	if err := f.checker.Run(context.Background(), now); err != nil {
		t.Fatalf("run sweep: %v", err)
	}

	pending, _ := f.queue.ListPending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(pending))
	}
	if pending[0].Kind != model.NotifKindUnpurchased {
		t.Errorf("kind = %q, want unpurchased", pending[0].Kind)
	}

	var payload model.UnpurchasedPayload
	if err := json.Unmarshal(pending[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Date != "2026-08-26" {
		t.Errorf("payload date = %q", payload.Date)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("payload items = %v", payload.Items)
	}
	got := map[string]bool{payload.Items[0]: true, payload.Items[1]: true}
	if !got[a.ID] || !got[b.ID] {
		t.Errorf("payload items = %v, want ids of both items", payload.Items)
	}
}

func TestSweepSkipsTodayAndFutureDates(t *testing.T) {
	f := setupChecker(t)
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

	f.items.Create("Milk", 1, "liter", "", "2026-08-28")
	f.items.Create("Eggs", 10, "piece", "", "2026-08-30")

	f.checker.Run(context.Background(), now)

	pending, _ := f.queue.ListPending()
	if len(pending) != 0 {
		t.Errorf("today and future dates must not be swept, got %d notifications", len(pending))
	}
}

func TestSweepSkipsFullyPurchasedDates(t *testing.T) {
	f := setupChecker(t)
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

	f.items.Create("Milk", 1, "liter", "", "2026-08-26")
	f.purchases.Record("milk", "2026-08-26")

	f.checker.Run(context.Background(), now)

	pending, _ := f.queue.ListPending()
	if len(pending) != 0 {
		t.Errorf("fully purchased date must not be swept, got %d notifications", len(pending))
	}
	if reminded, _ := f.markers.WasReminded("2026-08-26"); reminded {
		t.Error("no marker should be written for a clean date")
	}
}

func TestSweepRemindsAtMostOncePerDate(t *testing.T) {
	f := setupChecker(t)
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

	f.items.Create("Milk", 1, "liter", "", "2026-08-26")

	f.checker.Run(context.Background(), now)
	f.checker.Run(context.Background(), now.Add(time.Hour))

	pending, _ := f.queue.ListPending()
	if len(pending) != 1 {
		t.Errorf("expected 1 notification across repeated sweeps, got %d", len(pending))
	}

	// The marker is terminal: even a new unpurchased item on the same date
	// stays silent.
	f.items.Create("Eggs", 10, "piece", "", "2026-08-26")
	f.checker.Run(context.Background(), now.Add(2*time.Hour))

	pending, _ = f.queue.ListPending()
	if len(pending) != 1 {
		t.Errorf("marked date must stay silent, got %d notifications", len(pending))
	}
}

func TestSweepHandlesMultipleDates(t *testing.T) {
	f := setupChecker(t)
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)

	f.items.Create("Milk", 1, "liter", "", "2026-08-25")
	f.items.Create("Eggs", 10, "piece", "", "2026-08-26")
	f.items.Create("Bread", 1, "piece", "", "2026-08-27")
	f.purchases.Record("Bread", "2026-08-27")

	f.checker.Run(context.Background(), now)

	pending, _ := f.queue.ListPending()
	if len(pending) != 2 {
		t.Fatalf("expected one notification per dirty date, got %d", len(pending))
	}
}
