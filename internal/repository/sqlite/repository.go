// Package sqlite stores BeeConnect data in a local SQLite file through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/repository"
)

type apiaryRow struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"index"`
	Location    string
	Environment string
	Latitude    float64
	Longitude   float64
	HiveIDs     []string `gorm:"serializer:json"`
	OwnerID     string
}

func (apiaryRow) TableName() string { return "apiarios" }

type hiveRow struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Type        string
	Status      string
	ApiaryID    string `gorm:"index"`
	CreatedOn   string
	InstalledOn string
	Description string
	Notes       string
	OwnerID     string
}

func (hiveRow) TableName() string { return "colmeia" }

type inspectionRow struct {
	Seq        int64  `gorm:"primaryKey;autoIncrement"`
	ID         string `gorm:"uniqueIndex"`
	HiveID     string `gorm:"index:idx_inspection_order,priority:1"`
	SortDate   string `gorm:"index:idx_inspection_order,priority:2"`
	Date       string
	Feeding    string
	Treatments string
	Problems   string
	Notes      string
	NextVisit  string
}

func (inspectionRow) TableName() string { return "inspecoes" }

type harvestRow struct {
	ID         string `gorm:"primaryKey"`
	ApiaryID   string `gorm:"index"`
	ApiaryName string
	AmountKg   float64
	Date       time.Time
}

func (harvestRow) TableName() string { return "honey_harvests" }

type reminderRow struct {
	ID          string `gorm:"primaryKey"`
	Key         string `gorm:"column:dedup_key;uniqueIndex"`
	HiveID      string
	Title       string
	Message     string
	FireAt      time.Time `gorm:"index"`
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

func (reminderRow) TableName() string { return "reminders" }

// Repository implements repository.Store on SQLite.
type Repository struct {
	db *gorm.DB
}

var _ repository.Store = (*Repository)(nil)

// Open creates the database file if needed and migrates the schema.
func Open(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&apiaryRow{},
		&hiveRow{},
		&inspectionRow{},
		&harvestRow{},
		&reminderRow{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close releases the underlying connection.
func (r *Repository) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, repository.ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", what, id, err)
}

func (r *Repository) CreateApiary(ctx context.Context, apiary models.Apiary) (models.Apiary, error) {
	apiary.ID = uuid.NewString()
	if apiary.HiveIDs == nil {
		apiary.HiveIDs = []string{}
	}
	row := apiaryRow(apiary)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Apiary{}, fmt.Errorf("insert apiary: %w", err)
	}
	return apiary, nil
}

func (r *Repository) GetApiary(ctx context.Context, id string) (models.Apiary, error) {
	var row apiaryRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return models.Apiary{}, notFound(err, "apiary", id)
	}
	return models.Apiary(row), nil
}

func (r *Repository) ListApiaries(ctx context.Context) ([]models.Apiary, error) {
	var rows []apiaryRow
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list apiaries: %w", err)
	}
	out := make([]models.Apiary, len(rows))
	for i, row := range rows {
		out[i] = models.Apiary(row)
	}
	return out, nil
}

// AddHiveToApiary appends hiveID to the apiary's hive list unless already present.
func (r *Repository) AddHiveToApiary(ctx context.Context, apiaryID, hiveID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row apiaryRow
		if err := tx.First(&row, "id = ?", apiaryID).Error; err != nil {
			return notFound(err, "apiary", apiaryID)
		}
		for _, id := range row.HiveIDs {
			if id == hiveID {
				return nil
			}
		}
		row.HiveIDs = append(row.HiveIDs, hiveID)
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("link hive %s to apiary %s: %w", hiveID, apiaryID, err)
		}
		return nil
	})
}

func (r *Repository) CreateHive(ctx context.Context, hive models.Hive) (models.Hive, error) {
	hive.ID = uuid.NewString()
	row := hiveRow(hive)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Hive{}, fmt.Errorf("insert hive: %w", err)
	}
	return hive, nil
}

func (r *Repository) GetHive(ctx context.Context, id string) (models.Hive, error) {
	var row hiveRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return models.Hive{}, notFound(err, "hive", id)
	}
	return models.Hive(row), nil
}

func (r *Repository) UpdateHive(ctx context.Context, id string, update models.HiveUpdate) (models.Hive, error) {
	res := r.db.WithContext(ctx).Model(&hiveRow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":         update.Name,
		"type":         update.Type,
		"status":       update.Status,
		"installed_on": update.InstalledOn,
		"description":  update.Description,
		"notes":        update.Notes,
	})
	if res.Error != nil {
		return models.Hive{}, fmt.Errorf("update hive %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Hive{}, fmt.Errorf("hive %s: %w", id, repository.ErrNotFound)
	}
	return r.GetHive(ctx, id)
}

func (r *Repository) ListHives(ctx context.Context) ([]models.Hive, error) {
	return listHives(r.db.WithContext(ctx))
}

func (r *Repository) ListHivesByApiary(ctx context.Context, apiaryID string) ([]models.Hive, error) {
	return listHives(r.db.WithContext(ctx).Where("apiary_id = ?", apiaryID))
}

func listHives(q *gorm.DB) ([]models.Hive, error) {
	var rows []hiveRow
	if err := q.Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list hives: %w", err)
	}
	out := make([]models.Hive, len(rows))
	for i, row := range rows {
		out[i] = models.Hive(row)
	}
	return out, nil
}

// AppendInspection stores rec. Seq comes from the autoincrement key.
func (r *Repository) AppendInspection(ctx context.Context, rec models.Inspection) (models.Inspection, error) {
	row := inspectionRow{
		ID:         uuid.NewString(),
		HiveID:     rec.HiveID,
		SortDate:   repository.SortDate(rec.Date),
		Date:       rec.Date,
		Feeding:    rec.Feeding,
		Treatments: rec.Treatments,
		Problems:   rec.Problems,
		Notes:      rec.Notes,
		NextVisit:  rec.NextVisit,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Inspection{}, fmt.Errorf("insert inspection: %w", err)
	}
	rec.ID = row.ID
	rec.Seq = row.Seq
	return rec, nil
}

func (r *Repository) ListInspections(ctx context.Context, hiveID string) ([]models.Inspection, error) {
	var rows []inspectionRow
	err := r.db.WithContext(ctx).
		Where("hive_id = ?", hiveID).
		Order("sort_date DESC").
		Order("seq DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list inspections of hive %s: %w", hiveID, err)
	}

	out := make([]models.Inspection, len(rows))
	for i, row := range rows {
		out[i] = models.Inspection{
			ID:         row.ID,
			HiveID:     row.HiveID,
			Date:       row.Date,
			Feeding:    row.Feeding,
			Treatments: row.Treatments,
			Problems:   row.Problems,
			Notes:      row.Notes,
			NextVisit:  row.NextVisit,
			Seq:        row.Seq,
		}
	}
	return out, nil
}

func (r *Repository) AddHarvest(ctx context.Context, harvest models.Harvest) (models.Harvest, error) {
	harvest.ID = uuid.NewString()
	row := harvestRow{
		ID:         harvest.ID,
		ApiaryID:   harvest.ApiaryID,
		ApiaryName: harvest.ApiaryName,
		AmountKg:   harvest.AmountKg,
		Date:       harvest.Date,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Harvest{}, fmt.Errorf("insert harvest: %w", err)
	}
	harvest.Status = models.HarvestConfirmed
	return harvest, nil
}

func (r *Repository) ListHarvests(ctx context.Context, apiaryID string) ([]models.Harvest, error) {
	var rows []harvestRow
	if err := r.db.WithContext(ctx).Where("apiary_id = ?", apiaryID).Order("date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list harvests of apiary %s: %w", apiaryID, err)
	}
	out := make([]models.Harvest, len(rows))
	for i, row := range rows {
		out[i] = models.Harvest{
			ID:         row.ID,
			ApiaryID:   row.ApiaryID,
			ApiaryName: row.ApiaryName,
			AmountKg:   row.AmountKg,
			Date:       row.Date,
			Status:     models.HarvestConfirmed,
		}
	}
	return out, nil
}

// SaveReminder inserts reminder unless its key is already taken, in which case
// the stored reminder is returned with created set to false.
func (r *Repository) SaveReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, bool, error) {
	reminder.ID = uuid.NewString()
	row := reminderRow(reminder)

	db := r.db.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return models.Reminder{}, false, fmt.Errorf("insert reminder: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return reminder, true, nil
	}

	var existing reminderRow
	if err := db.First(&existing, "dedup_key = ?", reminder.Key).Error; err != nil {
		return models.Reminder{}, false, fmt.Errorf("load reminder %s: %w", reminder.Key, err)
	}
	return models.Reminder(existing), false, nil
}

func (r *Repository) PendingReminders(ctx context.Context) ([]models.Reminder, error) {
	var rows []reminderRow
	if err := r.db.WithContext(ctx).Where("delivered_at IS NULL").Order("fire_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}
	out := make([]models.Reminder, len(rows))
	for i, row := range rows {
		out[i] = models.Reminder(row)
	}
	return out, nil
}

// ClaimReminder marks the reminder delivered, reporting false if it already was.
func (r *Repository) ClaimReminder(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&reminderRow{}).
		Where("id = ? AND delivered_at IS NULL", id).
		Update("delivered_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("claim reminder %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
