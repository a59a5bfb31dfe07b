// Package apiaries manages apiaries and the hives they hold.
package apiaries

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/domain/models"
)

// ErrInvalid indicates an apiary or hive payload failed validation.
var ErrInvalid = errors.New("invalid input")

// Store persists apiaries and hives.
type Store interface {
	CreateApiary(ctx context.Context, apiary models.Apiary) (models.Apiary, error)
	GetApiary(ctx context.Context, id string) (models.Apiary, error)
	ListApiaries(ctx context.Context) ([]models.Apiary, error)
	AddHiveToApiary(ctx context.Context, apiaryID, hiveID string) error
	CreateHive(ctx context.Context, hive models.Hive) (models.Hive, error)
	GetHive(ctx context.Context, id string) (models.Hive, error)
	UpdateHive(ctx context.Context, id string, update models.HiveUpdate) (models.Hive, error)
	ListHivesByApiary(ctx context.Context, apiaryID string) ([]models.Hive, error)
}

// Service implements apiary and hive management.
type Service struct {
	store  Store
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new apiary service.
func NewService(store Store, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, loc: loc, logger: logger, now: time.Now}
}

func (s *Service) CreateApiary(ctx context.Context, apiary models.Apiary) (models.Apiary, error) {
	apiary.Name = strings.TrimSpace(apiary.Name)
	if apiary.Name == "" {
		return models.Apiary{}, fmt.Errorf("%w: apiary name is required", ErrInvalid)
	}
	apiary.HiveIDs = nil

	created, err := s.store.CreateApiary(ctx, apiary)
	if err != nil {
		return models.Apiary{}, fmt.Errorf("create apiary: %w", err)
	}
	s.logger.Info("apiary created", zap.String("apiary_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *Service) GetApiary(ctx context.Context, id string) (models.Apiary, error) {
	return s.store.GetApiary(ctx, id)
}

func (s *Service) ListApiaries(ctx context.Context) ([]models.Apiary, error) {
	return s.store.ListApiaries(ctx)
}

// CreateHive creates a hive and links it to its apiary.
func (s *Service) CreateHive(ctx context.Context, hive models.Hive) (models.Hive, error) {
	hive.Name = strings.TrimSpace(hive.Name)
	hive.ApiaryID = strings.TrimSpace(hive.ApiaryID)
	if hive.Name == "" || hive.ApiaryID == "" {
		return models.Hive{}, fmt.Errorf("%w: hive name and apiary are required", ErrInvalid)
	}
	if err := validStatus(hive.Status); err != nil {
		return models.Hive{}, err
	}
	if err := validType(hive.Type); err != nil {
		return models.Hive{}, err
	}
	if hive.Status == "" {
		hive.Status = models.DefaultHiveStatus
	}
	if hive.CreatedOn == "" {
		hive.CreatedOn = s.now().In(s.loc).Format(models.InspectionDateLayout)
	}

	if _, err := s.store.GetApiary(ctx, hive.ApiaryID); err != nil {
		return models.Hive{}, fmt.Errorf("resolve apiary: %w", err)
	}

	created, err := s.store.CreateHive(ctx, hive)
	if err != nil {
		return models.Hive{}, fmt.Errorf("create hive: %w", err)
	}
	if err := s.store.AddHiveToApiary(ctx, created.ApiaryID, created.ID); err != nil {
		s.logger.Error("hive created but not linked to apiary",
			zap.String("hive_id", created.ID),
			zap.String("apiary_id", created.ApiaryID),
			zap.Error(err))
		return models.Hive{}, fmt.Errorf("link hive: %w", err)
	}

	s.logger.Info("hive created", zap.String("hive_id", created.ID), zap.String("apiary_id", created.ApiaryID))
	return created, nil
}

func (s *Service) GetHive(ctx context.Context, id string) (models.Hive, error) {
	return s.store.GetHive(ctx, id)
}

func (s *Service) UpdateHive(ctx context.Context, id string, update models.HiveUpdate) (models.Hive, error) {
	update.Name = strings.TrimSpace(update.Name)
	if update.Name == "" {
		return models.Hive{}, fmt.Errorf("%w: hive name is required", ErrInvalid)
	}
	if err := validStatus(update.Status); err != nil {
		return models.Hive{}, err
	}
	if err := validType(update.Type); err != nil {
		return models.Hive{}, err
	}
	return s.store.UpdateHive(ctx, id, update)
}

// Hives lists the hives of an apiary after checking the apiary exists.
func (s *Service) Hives(ctx context.Context, apiaryID string) ([]models.Hive, error) {
	if _, err := s.store.GetApiary(ctx, apiaryID); err != nil {
		return nil, err
	}
	return s.store.ListHivesByApiary(ctx, apiaryID)
}

func validStatus(status string) error {
	return oneOf("status", status, models.HiveStatuses)
}

func validType(hiveType string) error {
	return oneOf("type", hiveType, models.HiveTypes)
}

// oneOf accepts an empty value or one of known.
func oneOf(field, value string, known []string) error {
	if value == "" || slices.Contains(known, value) {
		return nil
	}
	return fmt.Errorf("%w: unknown hive %s %q", ErrInvalid, field, value)
}
