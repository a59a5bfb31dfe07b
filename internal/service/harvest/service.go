// Package harvest records honey harvests and summarizes them per apiary.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/domain/models"
)

// ErrInvalidHarvest indicates the harvest payload failed validation.
var ErrInvalidHarvest = errors.New("invalid harvest")

// Store persists harvests.
type Store interface {
	AddHarvest(ctx context.Context, harvest models.Harvest) (models.Harvest, error)
	ListHarvests(ctx context.Context, apiaryID string) ([]models.Harvest, error)
	GetApiary(ctx context.Context, id string) (models.Apiary, error)
}

// Mirror receives a copy of every confirmed harvest.
type Mirror interface {
	MirrorHarvest(ctx context.Context, h models.Harvest) error
}

// Service records harvests in two phases: a tentative entry is visible as
// pending while the store write is in flight and is dropped once it settles.
type Service struct {
	store  Store
	mirror Mirror
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	seq     int
	pending map[string][]models.Harvest
}

// NewService creates a harvest service. mirror may be nil.
func NewService(store Store, mirror Mirror, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:   store,
		mirror:  mirror,
		loc:     loc,
		logger:  logger,
		now:     time.Now,
		pending: make(map[string][]models.Harvest),
	}
}

// Record stores a harvest of amountKg for the apiary. A zero date means now.
func (s *Service) Record(ctx context.Context, apiaryID string, amountKg float64, date time.Time) (models.Harvest, error) {
	apiaryID = strings.TrimSpace(apiaryID)
	if apiaryID == "" {
		return models.Harvest{}, fmt.Errorf("%w: apiary id is required", ErrInvalidHarvest)
	}
	if amountKg <= 0 {
		return models.Harvest{}, fmt.Errorf("%w: amount must be positive", ErrInvalidHarvest)
	}
	if date.IsZero() {
		date = s.now()
	}

	apiary, err := s.store.GetApiary(ctx, apiaryID)
	if err != nil {
		return models.Harvest{}, fmt.Errorf("resolve apiary: %w", err)
	}

	tentative := s.begin(models.Harvest{
		ApiaryID:   apiaryID,
		ApiaryName: apiary.Name,
		AmountKg:   amountKg,
		Date:       date.In(s.loc),
	})
	saved, err := s.store.AddHarvest(ctx, tentative)
	s.settle(tentative)
	if err != nil {
		s.logger.Warn("harvest rolled back", zap.String("apiary_id", apiaryID), zap.Error(err))
		return models.Harvest{}, fmt.Errorf("add harvest: %w", err)
	}
	saved.Status = models.HarvestConfirmed

	s.logger.Info("harvest recorded",
		zap.String("apiary_id", apiaryID),
		zap.String("harvest_id", saved.ID),
		zap.Float64("amount_kg", amountKg))

	if s.mirror != nil {
		if err := s.mirror.MirrorHarvest(ctx, saved); err != nil {
			s.logger.Warn("harvest not mirrored", zap.String("harvest_id", saved.ID), zap.Error(err))
		}
	}
	return saved, nil
}

// Stats summarizes the harvests of an apiary, including pending ones.
func (s *Service) Stats(ctx context.Context, apiaryID string) (models.HarvestStats, error) {
	apiary, err := s.store.GetApiary(ctx, apiaryID)
	if err != nil {
		return models.HarvestStats{}, fmt.Errorf("resolve apiary: %w", err)
	}
	stored, err := s.store.ListHarvests(ctx, apiaryID)
	if err != nil {
		return models.HarvestStats{}, fmt.Errorf("list harvests: %w", err)
	}

	entries := append(s.Pending(apiaryID), stored...)
	return Summarize(apiary, entries, s.loc), nil
}

// Pending returns the tentative entries of an apiary.
func (s *Service) Pending(apiaryID string) []models.Harvest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Harvest(nil), s.pending[apiaryID]...)
}

// Summarize computes totals and daily sums. Entries are returned newest first,
// daily totals oldest first.
func Summarize(apiary models.Apiary, entries []models.Harvest, loc *time.Location) models.HarvestStats {
	stats := models.HarvestStats{
		ApiaryID:   apiary.ID,
		ApiaryName: apiary.Name,
		Count:      len(entries),
		Daily:      []models.DailyHarvest{},
		Entries:    append([]models.Harvest{}, entries...),
	}

	daily := make(map[models.Date]float64)
	for _, h := range entries {
		stats.TotalKg += h.AmountKg
		daily[models.DateOf(h.Date.In(loc))] += h.AmountKg
	}
	for d, kg := range daily {
		stats.Daily = append(stats.Daily, models.DailyHarvest{Date: d, AmountKg: kg})
	}

	sort.Slice(stats.Daily, func(i, j int) bool { return stats.Daily[i].Date.Before(stats.Daily[j].Date) })
	sort.SliceStable(stats.Entries, func(i, j int) bool { return stats.Entries[i].Date.After(stats.Entries[j].Date) })
	return stats
}

func (s *Service) begin(h models.Harvest) models.Harvest {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	h.ID = fmt.Sprintf("pending-%d", s.seq)
	h.Status = models.HarvestPending
	s.pending[h.ApiaryID] = append(s.pending[h.ApiaryID], h)
	return h
}

func (s *Service) settle(h models.Harvest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.pending[h.ApiaryID]
	for i, p := range list {
		if p.ID == h.ID {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.pending, h.ApiaryID)
		return
	}
	s.pending[h.ApiaryID] = list
}
