package store

import (
	"testing"

	"github.com/mthomps/restock/internal/database"
)

func setupPurchaseTestDB(t *testing.T) (*PurchaseStore, *ItemStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPurchaseStore(db), NewItemStore(db)
}

func TestRecordKeepsLatestPurchase(t *testing.T) {
	ps, _ := setupPurchaseTestDB(t)

	if err := ps.Record("Milk", "2026-08-20"); err != nil {
		t.Fatalf("record: %v", err)
	}
	// A later purchase of the same product overwrites the date, including
	// when the name differs only in case.
	if err := ps.Record("milk", "2026-08-25"); err != nil {
		t.Fatalf("record again: %v", err)
	}

	rec, err := ps.Get("MILK")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record, got nil")
	}
	if rec.PurchasedOn != "2026-08-25" {
		t.Errorf("purchased_on = %q, want 2026-08-25", rec.PurchasedOn)
	}

	all, _ := ps.List()
	if len(all) != 1 {
		t.Errorf("expected 1 record, got %d", len(all))
	}
}

func TestGetMissingPurchaseReturnsNil(t *testing.T) {
	ps, _ := setupPurchaseTestDB(t)

	rec, err := ps.Get("Milk")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil, got %+v", rec)
	}
}

func TestPruneOrphans(t *testing.T) {
	ps, is := setupPurchaseTestDB(t)

	is.Create("Milk", 1, "liter", "", "2026-08-28")
	ps.Record("Milk", "2026-08-28")
	ps.Record("Eggs", "2026-08-28")

	pruned, err := ps.PruneOrphans()
	if err != nil {
		t.Fatalf("prune orphans: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	if rec, _ := ps.Get("Milk"); rec == nil {
		t.Error("record backed by an item must survive pruning")
	}
	if rec, _ := ps.Get("Eggs"); rec != nil {
		t.Errorf("orphaned record should be pruned, got %+v", rec)
	}
}
