package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.DB.Path != "restock.db" {
		t.Errorf("db path = %q", cfg.DB.Path)
	}
	if cfg.Push.DispatchInterval != 30*time.Second {
		t.Errorf("dispatch interval = %v", cfg.Push.DispatchInterval)
	}
	if !cfg.Sweep.Enabled {
		t.Error("sweep should default to enabled")
	}
	if cfg.Backup.Enabled() {
		t.Error("backups should be disabled with no bucket configured")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RESTOCK_PORT", "9090")
	t.Setenv("RESTOCK_HOST", "127.0.0.1")
	t.Setenv("RESTOCK_BACKUP_S3_BUCKET", "restock-snapshots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := cfg.Server.Address(); got != "127.0.0.1:9090" {
		t.Errorf("address = %q", got)
	}
	if !cfg.Backup.Enabled() {
		t.Error("backups should be enabled once a bucket is set")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("RESTOCK_PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Error("invalid port should fail to load")
	}
}
