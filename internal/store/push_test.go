package store

import (
	"testing"

	"github.com/mthomps/restock/internal/database"
)

func setupPushTestDB(t *testing.T) *PushStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db)
}

func TestCreateSubscriptionUpsertsByEndpoint(t *testing.T) {
	ps := setupPushTestDB(t)

	sub, err := ps.CreateSubscription("https://push.example/abc", "p256dh-key", "auth-key", "phone")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.Endpoint != "https://push.example/abc" {
		t.Errorf("endpoint = %q", sub.Endpoint)
	}

	// Re-subscribing the same endpoint refreshes the keys instead of adding
	// a duplicate row.
	if _, err := ps.CreateSubscription("https://push.example/abc", "new-key", "new-auth", "phone"); err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}

	count, err := ps.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	got, _ := ps.GetByEndpoint("https://push.example/abc")
	if got == nil || got.P256dhKey != "new-key" {
		t.Errorf("expected refreshed keys, got %+v", got)
	}
}

func TestDeleteByEndpoint(t *testing.T) {
	ps := setupPushTestDB(t)

	ps.CreateSubscription("https://push.example/abc", "k", "a", "")
	if err := ps.DeleteByEndpoint("https://push.example/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	subs, err := ps.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no subscriptions, got %d", len(subs))
	}
}
