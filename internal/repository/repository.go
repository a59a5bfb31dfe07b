// Package repository defines the persistence contract shared by the storage drivers.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/beeconnect/server/internal/domain/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// Store is implemented by every storage driver.
type Store interface {
	CreateApiary(ctx context.Context, apiary models.Apiary) (models.Apiary, error)
	GetApiary(ctx context.Context, id string) (models.Apiary, error)
	ListApiaries(ctx context.Context) ([]models.Apiary, error)
	AddHiveToApiary(ctx context.Context, apiaryID, hiveID string) error

	CreateHive(ctx context.Context, hive models.Hive) (models.Hive, error)
	GetHive(ctx context.Context, id string) (models.Hive, error)
	UpdateHive(ctx context.Context, id string, update models.HiveUpdate) (models.Hive, error)
	ListHives(ctx context.Context) ([]models.Hive, error)
	ListHivesByApiary(ctx context.Context, apiaryID string) ([]models.Hive, error)

	AppendInspection(ctx context.Context, rec models.Inspection) (models.Inspection, error)
	ListInspections(ctx context.Context, hiveID string) ([]models.Inspection, error)

	AddHarvest(ctx context.Context, harvest models.Harvest) (models.Harvest, error)
	ListHarvests(ctx context.Context, apiaryID string) ([]models.Harvest, error)

	SaveReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, bool, error)
	PendingReminders(ctx context.Context) ([]models.Reminder, error)
	ClaimReminder(ctx context.Context, id string, at time.Time) (bool, error)

	Close(ctx context.Context) error
}

// SortDate converts a DD/MM/YYYY inspection date into a sortable ISO key.
// Unparseable dates map to the empty string so they sort last in descending order.
func SortDate(date string) string {
	d, err := models.ParseInspectionDate(date)
	if err != nil {
		return ""
	}
	return d.String()
}
