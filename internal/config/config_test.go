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
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "famili.db" {
		t.Errorf("db path = %q, want famili.db", cfg.DBPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("poll interval = %v, want 5s", cfg.PollInterval)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FAMILI_PORT", "9090")
	t.Setenv("FAMILI_DB_PATH", "/tmp/other.db")
	t.Setenv("FAMILI_LOG_LEVEL", "debug")
	t.Setenv("FAMILI_POLL_INTERVAL", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Errorf("db path = %q, want /tmp/other.db", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("poll interval = %v, want 2s", cfg.PollInterval)
	}
}
