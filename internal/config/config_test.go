package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{"APP_PORT", "STORAGE_DRIVER", "TIMEZONE", "INSPECTION_PAGE_SIZE", "PUSH_PROJECT_ID", "WEEK_START"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Storage.Driver != StorageMongoDB {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Calendar.PageSize != 5 || cfg.Calendar.WeekStart != "sunday" {
		t.Errorf("calendar = %+v", cfg.Calendar)
	}
	if cfg.Push.Enabled() {
		t.Error("push must be disabled without a project id")
	}
	if cfg.Sheets.Enabled() {
		t.Error("sheets must be disabled without credentials")
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := strings.Join([]string{
		"STORAGE_DRIVER=SQLite",
		"SQLITE_PATH=" + filepath.Join(dir, "bee.db"),
		"INSPECTION_PAGE_SIZE=2",
		"PUSH_PROJECT_ID=beeconnect-prod",
	}, "\n")
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"STORAGE_DRIVER", "SQLITE_PATH", "INSPECTION_PAGE_SIZE", "PUSH_PROJECT_ID"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != StorageSQLite {
		t.Errorf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Calendar.PageSize != 2 {
		t.Errorf("page size = %d", cfg.Calendar.PageSize)
	}
	if !cfg.Push.Enabled() || cfg.Push.ProjectID != "beeconnect-prod" || cfg.Push.Topic != "beeconnect" {
		t.Errorf("push = %+v", cfg.Push)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Storage:   StorageConfig{Driver: StorageSQLite},
			SQLite:    SQLiteConfig{Path: "bee.db"},
			Calendar:  CalendarConfig{Timezone: "UTC", PageSize: 5},
			Reminders: RemindersConfig{SweepSchedule: "*/5 * * * *"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: "STORAGE_DRIVER"},
		{name: "bad timezone", mutate: func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }, wantErr: "TIMEZONE"},
		{name: "bad week start", mutate: func(c *Config) { c.Calendar.WeekStart = "someday" }, wantErr: "WEEK_START"},
		{name: "zero page size", mutate: func(c *Config) { c.Calendar.PageSize = 0 }, wantErr: "INSPECTION_PAGE_SIZE"},
		{name: "push without topic", mutate: func(c *Config) { c.Push.ProjectID = "p" }, wantErr: "PUSH_TOPIC"},
		{name: "whatsapp without recipient", mutate: func(c *Config) { c.WhatsApp.AccessToken = "t"; c.WhatsApp.PhoneNumberID = "1" }, wantErr: "WHATSAPP_RECIPIENT"},
		{name: "mongo without uri", mutate: func(c *Config) { c.Storage.Driver = StorageMongoDB; c.MongoDB.DBName = "x" }, wantErr: "MONGODB_URI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
