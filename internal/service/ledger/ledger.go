// Package ledger keeps the per-hive inspection history.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/domain/models"
)

// ErrInvalidInspection indicates the inspection payload failed validation.
var ErrInvalidInspection = errors.New("invalid inspection")

// Store persists inspections. ListInspections may return records in any order.
type Store interface {
	AppendInspection(ctx context.Context, rec models.Inspection) (models.Inspection, error)
	ListInspections(ctx context.Context, hiveID string) ([]models.Inspection, error)
}

// HiveLookup resolves hive metadata used to word reminders.
type HiveLookup interface {
	GetHive(ctx context.Context, id string) (models.Hive, error)
}

// VisitScheduler schedules a reminder for a future visit.
type VisitScheduler interface {
	ScheduleVisit(ctx context.Context, hive models.Hive, at time.Time) error
}

// Options tunes the ledger service.
type Options struct {
	Location *time.Location
	PageSize int
}

// Service appends to and pages through hive ledgers.
type Service struct {
	store     Store
	hives     HiveLookup
	reminders VisitScheduler
	loc       *time.Location
	pageSize  int
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a ledger service. hives and reminders may be nil.
func NewService(store Store, hives HiveLookup, reminders VisitScheduler, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Service{
		store:     store,
		hives:     hives,
		reminders: reminders,
		loc:       opts.Location,
		pageSize:  opts.PageSize,
		logger:    logger,
		now:       time.Now,
	}
}

// PageSize returns the configured default page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// Append validates and stores rec as the newest entry of the hive's ledger.
// A future next visit triggers a reminder; failing to schedule it does not fail the append.
func (s *Service) Append(ctx context.Context, hiveID string, rec models.Inspection) (models.Inspection, error) {
	hiveID = strings.TrimSpace(hiveID)
	if hiveID == "" {
		return models.Inspection{}, fmt.Errorf("%w: hive id is required", ErrInvalidInspection)
	}

	rec = normalize(rec)
	rec.HiveID = hiveID

	if _, err := rec.InspectionDate(); err != nil {
		return models.Inspection{}, fmt.Errorf("%w: %v", ErrInvalidInspection, err)
	}

	var nextAt time.Time
	if rec.HasNextVisit() {
		at, err := models.ParseNextVisit(rec.NextVisit, s.loc)
		if err != nil {
			return models.Inspection{}, fmt.Errorf("%w: %v", ErrInvalidInspection, err)
		}
		nextAt = at
	}

	saved, err := s.store.AppendInspection(ctx, rec)
	if err != nil {
		return models.Inspection{}, fmt.Errorf("append inspection: %w", err)
	}

	s.logger.Info("inspection appended",
		zap.String("hive_id", hiveID),
		zap.String("inspection_id", saved.ID),
		zap.String("date", saved.Date))

	if !nextAt.IsZero() && nextAt.After(s.now()) {
		s.scheduleReminder(ctx, saved, nextAt)
	}

	return saved, nil
}

// List returns the hive's ledger newest first, split into pages of pageSize.
// A non-positive pageSize falls back to the configured default.
func (s *Service) List(ctx context.Context, hiveID string, pageSize int) (Pages, error) {
	records, err := s.store.ListInspections(ctx, hiveID)
	if err != nil {
		return Pages{}, fmt.Errorf("list inspections for hive %s: %w", hiveID, err)
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	return Paginate(SortNewestFirst(records), pageSize), nil
}

func (s *Service) scheduleReminder(ctx context.Context, rec models.Inspection, at time.Time) {
	if s.reminders == nil {
		return
	}

	hive := models.Hive{ID: rec.HiveID}
	if s.hives != nil {
		found, err := s.hives.GetHive(ctx, rec.HiveID)
		if err != nil {
			s.logger.Debug("hive lookup for reminder failed", zap.String("hive_id", rec.HiveID), zap.Error(err))
		} else {
			hive = found
		}
	}

	if err := s.reminders.ScheduleVisit(ctx, hive, at); err != nil {
		s.logger.Warn("visit reminder not scheduled",
			zap.String("hive_id", rec.HiveID),
			zap.Time("next_visit", at),
			zap.Error(err))
	}
}

// SortNewestFirst orders records by inspection date descending.
// Ties go to the most recently appended record; unparseable dates sort last.
func SortNewestFirst(records []models.Inspection) []models.Inspection {
	type keyed struct {
		date models.Date
		rec  models.Inspection
	}

	items := make([]keyed, len(records))
	for i, rec := range records {
		d, _ := rec.InspectionDate()
		items[i] = keyed{date: d, rec: rec}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if c := items[i].date.Compare(items[j].date); c != 0 {
			return c > 0
		}
		return items[i].rec.Seq > items[j].rec.Seq
	})

	out := make([]models.Inspection, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

func normalize(rec models.Inspection) models.Inspection {
	rec.ID = ""
	rec.Seq = 0
	rec.Date = strings.TrimSpace(rec.Date)
	rec.Feeding = strings.TrimSpace(rec.Feeding)
	rec.Treatments = strings.TrimSpace(rec.Treatments)
	rec.Problems = strings.TrimSpace(rec.Problems)
	rec.Notes = strings.TrimSpace(rec.Notes)
	rec.NextVisit = strings.TrimSpace(rec.NextVisit)
	return rec
}
