package driver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/beeconnect/server/internal/config"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageSQLite},
		SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "bee.db")},
	}
	store, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close(context.Background())

	if _, err := store.ListApiaries(context.Background()); err != nil {
		t.Errorf("ListApiaries: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "redis"}}
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatal("expected error")
	}
}
