package store

import (
	"testing"

	"github.com/mthomps/restock/internal/database"
)

func setupSettingsTestDB(t *testing.T) *SettingsStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSettingsStore(db)
}

func TestNotificationsEnabledByDefault(t *testing.T) {
	ss := setupSettingsTestDB(t)

	enabled, err := ss.NotificationsEnabled()
	if err != nil {
		t.Fatalf("notifications enabled: %v", err)
	}
	if !enabled {
		t.Error("notifications should default to enabled")
	}
}

func TestSetNotificationsEnabled(t *testing.T) {
	ss := setupSettingsTestDB(t)

	if err := ss.SetNotificationsEnabled(false); err != nil {
		t.Fatalf("disable notifications: %v", err)
	}
	enabled, _ := ss.NotificationsEnabled()
	if enabled {
		t.Error("expected notifications disabled")
	}

	if err := ss.SetNotificationsEnabled(true); err != nil {
		t.Fatalf("enable notifications: %v", err)
	}
	enabled, _ = ss.NotificationsEnabled()
	if !enabled {
		t.Error("expected notifications enabled")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ss := setupSettingsTestDB(t)

	if err := ss.Set("theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := ss.Get("theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "dark" {
		t.Errorf("value = %q, want dark", v)
	}

	if err := ss.Set("theme", "light"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _ = ss.Get("theme")
	if v != "light" {
		t.Errorf("value = %q, want light", v)
	}
}
