package store

import (
	"testing"

	"github.com/mthomps/restock/internal/database"
)

func setupSweepTestDB(t *testing.T) *SweepStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSweepStore(db)
}

func TestMarkRemindedIsIdempotent(t *testing.T) {
	ss := setupSweepTestDB(t)

	fresh, err := ss.MarkReminded("2026-08-27")
	if err != nil {
		t.Fatalf("mark reminded: %v", err)
	}
	if !fresh {
		t.Error("first mark should report a new marker")
	}

	fresh, err = ss.MarkReminded("2026-08-27")
	if err != nil {
		t.Fatalf("mark reminded again: %v", err)
	}
	if fresh {
		t.Error("second mark for the same date should be a no-op")
	}

	reminded, err := ss.WasReminded("2026-08-27")
	if err != nil {
		t.Fatalf("was reminded: %v", err)
	}
	if !reminded {
		t.Error("expected date to be marked")
	}

	reminded, _ = ss.WasReminded("2026-08-26")
	if reminded {
		t.Error("unmarked date reported as reminded")
	}
}

func TestListReminded(t *testing.T) {
	ss := setupSweepTestDB(t)

	ss.MarkReminded("2026-08-25")
	ss.MarkReminded("2026-08-27")

	dates, err := ss.ListReminded()
	if err != nil {
		t.Fatalf("list reminded: %v", err)
	}
	if len(dates) != 2 {
		t.Errorf("expected 2 markers, got %d", len(dates))
	}
}
