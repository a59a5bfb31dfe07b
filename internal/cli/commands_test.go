package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beeconnect/server/internal/repository/sqlite"
	"github.com/beeconnect/server/internal/service/ledger"
)

func writeEnv(t *testing.T) (envFile, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "bee.db")
	envFile = filepath.Join(dir, "cli.env")
	content := strings.Join([]string{
		"STORAGE_DRIVER=sqlite",
		"SQLITE_PATH=" + dbPath,
		"TIMEZONE=UTC",
	}, "\n")
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"STORAGE_DRIVER", "SQLITE_PATH", "TIMEZONE", "INSPECTION_PAGE_SIZE", "WEEK_START", "PUSH_PROJECT_ID", "WHATSAPP_TOKEN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return envFile, dbPath
}

func run(args ...string) error {
	root := New()
	root.SetArgs(args)
	root.SetOut(new(strings.Builder))
	root.SetErr(new(strings.Builder))
	return root.Execute()
}

func TestInspectAppendsToLedger(t *testing.T) {
	envFile, dbPath := writeEnv(t)

	if err := run("--env", envFile, "inspect", "H1", "--date", "10/05/2024", "--notes", "primeira"); err != nil {
		t.Fatalf("first inspect: %v", err)
	}
	if err := run("--env", envFile, "inspect", "H1", "--date", "20/05/2024", "--next-visit", "27/05/2024 09:00"); err != nil {
		t.Fatalf("second inspect: %v", err)
	}
	if err := run("--env", envFile, "inspect", "H1", "--date", "2024-05-01"); !errors.Is(err, ledger.ErrInvalidInspection) {
		t.Fatalf("expected ErrInvalidInspection, got %v", err)
	}

	repo, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close(context.Background())

	recs, err := repo.ListInspections(context.Background(), "H1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Date != "20/05/2024" || recs[1].Notes != "primeira" {
		t.Fatalf("ledger = %+v", recs)
	}
	if recs[0].NextVisit != "27/05/2024 09:00" {
		t.Errorf("next visit = %q", recs[0].NextVisit)
	}
}

func TestInspectionsRejectsUnknownDriver(t *testing.T) {
	envFile, _ := writeEnv(t)
	t.Setenv("STORAGE_DRIVER", "redis")

	if err := run("--env", envFile, "inspections", "H1"); err == nil {
		t.Fatal("expected configuration error")
	}
}
