package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8082" {
		t.Errorf("Port = %q, want 8082", cfg.Port)
	}
	if cfg.SQLiteDBPath != "./data/fintrack.db" {
		t.Errorf("SQLiteDBPath = %q", cfg.SQLiteDBPath)
	}
	if cfg.SyncBatchSize != 10 {
		t.Errorf("SyncBatchSize = %d, want 10", cfg.SyncBatchSize)
	}
	if cfg.RecurringScanInterval != time.Hour {
		t.Errorf("RecurringScanInterval = %v, want 1h", cfg.RecurringScanInterval)
	}
	if cfg.S3PresignExpiry != 7*24*time.Hour {
		t.Errorf("S3PresignExpiry = %v, want 168h", cfg.S3PresignExpiry)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RECURRING_SCAN_INTERVAL", "30m")
	t.Setenv("S3_USE_SSL", "false")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.RecurringScanInterval != 30*time.Minute {
		t.Errorf("RecurringScanInterval = %v, want 30m", cfg.RecurringScanInterval)
	}
	if cfg.S3UseSSL {
		t.Error("S3UseSSL = true, want false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Port = "http" }, true},
		{"port out of range", func(c *Config) { c.Port = "70000" }, true},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }, true},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, true},
		{"amqp without queue", func(c *Config) { c.AMQPQueue = "" }, true},
		{"s3 without keys", func(c *Config) { c.S3Endpoint = "s3.example.com" }, true},
		{"batch size too small", func(c *Config) { c.SyncBatchSize = 0 }, true},
		{"scan interval too small", func(c *Config) { c.RecurringScanInterval = time.Millisecond }, true},
		{"scan interval too large", func(c *Config) { c.RecurringScanInterval = 48 * time.Hour }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			cfg.SQLiteDBPath = t.TempDir() + "/fintrack.db"
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "nope"
	cfg.SyncBatchSize = -1
	cfg.AMQPQueue = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	msg := err.Error()
	for _, fragment := range []string{"invalid port", "sync batch size", "queue name"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("error message missing %q: %s", fragment, msg)
		}
	}
}
