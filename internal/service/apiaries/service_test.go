package apiaries

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/repository"
	"github.com/beeconnect/server/internal/repository/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "bee.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close(context.Background()) })

	svc := NewService(repo, time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateHiveLinksApiary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	apiary, err := svc.CreateApiary(ctx, models.Apiary{Name: "  Serra ", Latitude: 40.1, Longitude: -8.2})
	if err != nil {
		t.Fatal(err)
	}
	if apiary.Name != "Serra" || !apiary.HasCoordinates() {
		t.Errorf("apiary = %+v", apiary)
	}

	hive, err := svc.CreateHive(ctx, models.Hive{Name: "Colmeia 1", ApiaryID: apiary.ID, Type: "Langstroth"})
	if err != nil {
		t.Fatal(err)
	}
	if hive.Status != models.DefaultHiveStatus || hive.CreatedOn != "10/05/2024" {
		t.Errorf("hive defaults = %+v", hive)
	}

	got, err := svc.GetApiary(ctx, apiary.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.HiveIDs) != 1 || got.HiveIDs[0] != hive.ID {
		t.Errorf("apiary hive ids = %v", got.HiveIDs)
	}

	hives, err := svc.Hives(ctx, apiary.ID)
	if err != nil || len(hives) != 1 {
		t.Fatalf("hives = %v, err = %v", hives, err)
	}
}

func TestCreateHiveValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		hive models.Hive
		want error
	}{
		{name: "no name", hive: models.Hive{ApiaryID: "x"}, want: ErrInvalid},
		{name: "no apiary", hive: models.Hive{Name: "C"}, want: ErrInvalid},
		{name: "bad status", hive: models.Hive{Name: "C", ApiaryID: "x", Status: "Zombie"}, want: ErrInvalid},
		{name: "bad type", hive: models.Hive{Name: "C", ApiaryID: "x", Type: "Caixote"}, want: ErrInvalid},
		{name: "unknown apiary", hive: models.Hive{Name: "C", ApiaryID: "missing"}, want: repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateHive(ctx, tt.hive); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUpdateHive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	apiary, _ := svc.CreateApiary(ctx, models.Apiary{Name: "Serra"})
	hive, err := svc.CreateHive(ctx, models.Hive{Name: "Colmeia 1", ApiaryID: apiary.ID})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateHive(ctx, hive.ID, models.HiveUpdate{Name: "Colmeia A", Status: "Em observação", Notes: "rainha nova"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Colmeia A" || updated.Notes != "rainha nova" {
		t.Errorf("updated = %+v", updated)
	}
	if _, err := svc.UpdateHive(ctx, hive.ID, models.HiveUpdate{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("blank name: %v", err)
	}
	if _, err := svc.UpdateHive(ctx, hive.ID, models.HiveUpdate{Name: "C", Type: "Caixote"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown type: %v", err)
	}
}
