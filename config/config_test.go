package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ApiPort != "8080" || c.Database != "sqlite3" || c.DbPath != "db/database.db" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.Security.TokenValidHours != 24 || c.Sweeper.BatchSize != 50 {
		t.Errorf("unexpected security/sweeper defaults: %+v %+v", c.Security, c.Sweeper)
	}
	if c.OffsetHours() != -3 {
		t.Errorf("expected -3 offset, got %d", c.OffsetHours())
	}
	if c.Sweeper.SchedulerEnabled {
		t.Error("scheduler must be off by default")
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
		"api_port": "9000",
		"database": "postgres",
		"db_host": "localhost",
		"security": {"cron_secret": "from-file", "token_valid_hours": 8},
		"sweeper": {"batch_size": 10, "timezone_offset_hours": 0}
	}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CRON_SECRET", "from-env")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("SCHEDULER_ENABLED", "1")
	t.Setenv("PORT", "")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ApiPort != "9000" || c.Database != "postgres" || c.DbHost != "localhost" {
		t.Errorf("file values lost: %+v", c)
	}
	if c.Security.CronSecret != "from-env" {
		t.Errorf("env must win over file, got %q", c.Security.CronSecret)
	}
	if c.Security.TokenValidHours != 8 || c.Sweeper.BatchSize != 10 {
		t.Errorf("unexpected values %+v %+v", c.Security, c.Sweeper)
	}
	if c.OffsetHours() != 0 {
		t.Errorf("explicit zero offset must be kept, got %d", c.OffsetHours())
	}
	if c.Redis.DB != 4 || !c.Sweeper.SchedulerEnabled {
		t.Errorf("unexpected env overrides: redis db %d scheduler %v", c.Redis.DB, c.Sweeper.SchedulerEnabled)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
