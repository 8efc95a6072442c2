package store

import (
	"testing"
	"time"

	"github.com/mthomps/restock/internal/database"
	"github.com/mthomps/restock/internal/model"
)

func setupNotificationTestDB(t *testing.T) *NotificationStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewNotificationStore(db)
}

func TestEnqueueAndListDue(t *testing.T) {
	ns := setupNotificationTestDB(t)
	now := time.Now()

	past, err := ns.Enqueue(model.NotifKindReminder, "Milk", []byte(`{}`), now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := ns.Enqueue(model.NotifKindReminder, "Eggs", []byte(`{}`), now.Add(time.Hour)); err != nil {
		t.Fatalf("enqueue future: %v", err)
	}

	due, err := ns.ListDue(now)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("expected 1 due notification, got %d", len(due))
	}
	if due[0].ID != past.ID {
		t.Errorf("due id = %d, want %d", due[0].ID, past.ID)
	}
}

func TestDeliverAtRoundTripsMilliseconds(t *testing.T) {
	ns := setupNotificationTestDB(t)

	at := time.Now().Add(42 * time.Minute)
	n, err := ns.Enqueue(model.NotifKindReminder, "Milk", []byte(`{}`), at)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, err := ns.GetByID(n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DeliverAt.UnixMilli() != at.UnixMilli() {
		t.Errorf("deliver_at = %d, want %d", got.DeliverAt.UnixMilli(), at.UnixMilli())
	}
}

func TestCancelByProduct(t *testing.T) {
	ns := setupNotificationTestDB(t)
	now := time.Now()

	ns.Enqueue(model.NotifKindReminder, "Milk", []byte(`{}`), now.Add(time.Hour))
	ns.Enqueue(model.NotifKindReminder, "Eggs", []byte(`{}`), now.Add(time.Hour))

	// Cancellation matches the product case-insensitively and only touches
	// unfired rows.
	cancelled, err := ns.CancelByProduct("milk")
	if err != nil {
		t.Fatalf("cancel by product: %v", err)
	}
	if cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", cancelled)
	}

	pending, _ := ns.ListPending()
	if len(pending) != 1 || pending[0].Product != "Eggs" {
		t.Errorf("unexpected pending set: %+v", pending)
	}
}

func TestMarkFiredRemovesFromPending(t *testing.T) {
	ns := setupNotificationTestDB(t)
	now := time.Now()

	n, _ := ns.Enqueue(model.NotifKindReminder, "Milk", []byte(`{}`), now.Add(-time.Minute))
	if err := ns.MarkFired(n.ID); err != nil {
		t.Fatalf("mark fired: %v", err)
	}

	due, _ := ns.ListDue(now)
	if len(due) != 0 {
		t.Errorf("expected no due notifications after firing, got %d", len(due))
	}

	got, _ := ns.GetByID(n.ID)
	if got == nil || !got.Fired {
		t.Errorf("expected fired notification, got %+v", got)
	}
}

func TestCleanupFired(t *testing.T) {
	ns := setupNotificationTestDB(t)
	now := time.Now()

	old, _ := ns.Enqueue(model.NotifKindReminder, "Milk", []byte(`{}`), now.Add(-48*time.Hour))
	ns.MarkFired(old.ID)
	keep, _ := ns.Enqueue(model.NotifKindReminder, "Eggs", []byte(`{}`), now.Add(time.Hour))

	if err := ns.CleanupFired(now.Add(-24 * time.Hour)); err != nil {
		t.Fatalf("cleanup fired: %v", err)
	}

	if got, _ := ns.GetByID(old.ID); got != nil {
		t.Errorf("expected old fired notification removed, got %+v", got)
	}
	if got, _ := ns.GetByID(keep.ID); got == nil {
		t.Error("pending notification should survive cleanup")
	}
}

func TestListPendingByProduct(t *testing.T) {
	ns := setupNotificationTestDB(t)
	now := time.Now()

	ns.Enqueue(model.NotifKindReminder, "Milk", []byte(`{}`), now.Add(time.Hour))
	ns.Enqueue(model.NotifKindUnpurchased, "", []byte(`{}`), now.Add(time.Hour))

	pending, err := ns.ListPendingByProduct("MILK")
	if err != nil {
		t.Fatalf("list pending by product: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("expected 1 pending for product, got %d", len(pending))
	}
}
