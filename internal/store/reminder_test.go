package store

import (
	"testing"

	"github.com/mthomps/restock/internal/database"
	"github.com/mthomps/restock/internal/model"
)

func setupReminderTestDB(t *testing.T) *ReminderStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewReminderStore(db)
}

func TestReminderPutAndGet(t *testing.T) {
	rs := setupReminderTestDB(t)

	rem, err := rs.Put("Milk", 1, "liter", 7)
	if err != nil {
		t.Fatalf("put reminder: %v", err)
	}
	if rem.State != model.ReminderIdle {
		t.Errorf("state = %q, want idle", rem.State)
	}

	got, err := rs.Get("milk")
	if err != nil {
		t.Fatalf("get reminder: %v", err)
	}
	if got == nil {
		t.Fatal("case-insensitive lookup returned nil")
	}
	if got.IntervalDays != 7 {
		t.Errorf("interval = %d, want 7", got.IntervalDays)
	}
}

func TestReminderPutReplacesExisting(t *testing.T) {
	rs := setupReminderTestDB(t)

	rs.Put("Milk", 1, "liter", 7)
	if err := rs.SetState("Milk", model.ReminderPending); err != nil {
		t.Fatalf("set state: %v", err)
	}

	// Redefining a reminder resets its lifecycle.
	rem, err := rs.Put("MILK", 2, "liter", 3)
	if err != nil {
		t.Fatalf("replace reminder: %v", err)
	}
	if rem.IntervalDays != 3 || rem.Quantity != 2 {
		t.Errorf("unexpected replaced reminder: %+v", rem)
	}
	if rem.State != model.ReminderIdle {
		t.Errorf("state after replace = %q, want idle", rem.State)
	}

	all, _ := rs.List()
	if len(all) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(all))
	}
}

func TestReminderDelete(t *testing.T) {
	rs := setupReminderTestDB(t)

	rs.Put("Milk", 1, "liter", 7)
	if err := rs.Delete("milk"); err != nil {
		t.Fatalf("delete reminder: %v", err)
	}

	got, err := rs.Get("Milk")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestReminderSetState(t *testing.T) {
	rs := setupReminderTestDB(t)

	rs.Put("Milk", 1, "liter", 7)
	if err := rs.SetState("milk", model.ReminderFired); err != nil {
		t.Fatalf("set state: %v", err)
	}
	got, _ := rs.Get("Milk")
	if got.State != model.ReminderFired {
		t.Errorf("state = %q, want fired", got.State)
	}
}
