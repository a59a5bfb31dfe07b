package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/repository"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "data", "bee.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { repo.Close(context.Background()) })
	return repo
}

func TestApiaryAndHiveLifecycle(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	apiary, err := repo.CreateApiary(ctx, models.Apiary{Name: "Serra", Location: "Lousã"})
	if err != nil {
		t.Fatal(err)
	}
	hive, err := repo.CreateHive(ctx, models.Hive{Name: "Colmeia 1", ApiaryID: apiary.ID, Status: models.DefaultHiveStatus})
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.AddHiveToApiary(ctx, apiary.ID, hive.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddHiveToApiary(ctx, apiary.ID, hive.ID); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetApiary(ctx, apiary.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.HiveIDs) != 1 || got.HiveIDs[0] != hive.ID {
		t.Errorf("hive ids = %v", got.HiveIDs)
	}

	updated, err := repo.UpdateHive(ctx, hive.ID, models.HiveUpdate{Name: "Rainha Nova", Status: "Inativa"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Rainha Nova" || updated.ApiaryID != apiary.ID {
		t.Errorf("updated hive = %+v", updated)
	}

	hives, err := repo.ListHivesByApiary(ctx, apiary.ID)
	if err != nil || len(hives) != 1 {
		t.Fatalf("hives = %v, err = %v", hives, err)
	}

	if _, err := repo.GetHive(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.UpdateHive(ctx, "missing", models.HiveUpdate{Name: "x"}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.AddHiveToApiary(ctx, "missing", hive.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInspectionsOrderedByDateThenSeq(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for _, rec := range []models.Inspection{
		{HiveID: "H", Date: "01/05/2024", Notes: "a"},
		{HiveID: "H", Date: "20/05/2024", Notes: "b"},
		{HiveID: "H", Date: "01/05/2024", Notes: "c"},
		{HiveID: "other", Date: "30/05/2024"},
	} {
		if _, err := repo.AppendInspection(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := repo.ListInspections(ctx, "H")
	if err != nil {
		t.Fatal(err)
	}
	var notes []string
	for _, r := range recs {
		notes = append(notes, r.Notes)
	}
	want := []string{"b", "c", "a"}
	if len(notes) != len(want) {
		t.Fatalf("notes = %v", notes)
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Fatalf("notes = %v, want %v", notes, want)
		}
	}
	if recs[0].ID == "" || recs[0].Seq == 0 {
		t.Errorf("store must assign id and seq: %+v", recs[0])
	}
}

func TestHarvests(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	day := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	for i, kg := range []float64{12.5, 7} {
		if _, err := repo.AddHarvest(ctx, models.Harvest{ApiaryID: "A", ApiaryName: "Serra", AmountKg: kg, Date: day.AddDate(0, 0, i)}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.ListHarvests(ctx, "A")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].AmountKg != 7 || got[0].Status != models.HarvestConfirmed {
		t.Errorf("harvests = %+v", got)
	}
}

func TestReminderDedupAndClaim(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	fireAt := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)

	first, created, err := repo.SaveReminder(ctx, models.Reminder{Key: "H|2024-05-15T09:00", Title: "Inspeção Programada", FireAt: fireAt})
	if err != nil || !created {
		t.Fatalf("first save: created=%v err=%v", created, err)
	}
	second, created, err := repo.SaveReminder(ctx, models.Reminder{Key: "H|2024-05-15T09:00", Title: "dup", FireAt: fireAt})
	if err != nil {
		t.Fatal(err)
	}
	if created || second.ID != first.ID {
		t.Errorf("duplicate key must return the stored reminder: %+v", second)
	}

	pending, err := repo.PendingReminders(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v, err = %v", pending, err)
	}

	ok, err := repo.ClaimReminder(ctx, first.ID, fireAt)
	if err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}
	ok, err = repo.ClaimReminder(ctx, first.ID, fireAt)
	if err != nil || ok {
		t.Fatalf("second claim must lose: ok=%v err=%v", ok, err)
	}

	pending, err = repo.PendingReminders(ctx)
	if err != nil || len(pending) != 0 {
		t.Fatalf("pending after claim = %v, err = %v", pending, err)
	}
}
