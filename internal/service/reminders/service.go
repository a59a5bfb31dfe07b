// Package reminders schedules persisted one-shot visit notifications.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/scheduler"
)

// DefaultTitle is the title of visit reminders.
const DefaultTitle = "Inspeção Programada"

var (
	// ErrUnavailable is returned when no push gateway is configured.
	ErrUnavailable = errors.New("reminders unavailable")
	// ErrInvalidReminder indicates a reminder without key or fire time.
	ErrInvalidReminder = errors.New("invalid reminder")
)

// Store persists reminders. SaveReminder is idempotent on Reminder.Key.
type Store interface {
	SaveReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, bool, error)
	PendingReminders(ctx context.Context) ([]models.Reminder, error)
	ClaimReminder(ctx context.Context, id string, at time.Time) (bool, error)
}

// Sender delivers a notification to the user.
type Sender interface {
	Send(ctx context.Context, n models.Notification) error
}

// Fanout delivers to every sender and reports the joined failures.
type Fanout []Sender

func (f Fanout) Send(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Scheduler registers one-shot jobs.
type Scheduler interface {
	Once(at time.Time, name string, job scheduler.Job) cron.EntryID
}

// Service persists reminders and fires each of them at most once.
type Service struct {
	store  Store
	sender Sender
	sched  Scheduler
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a reminder service. A nil sender disables reminders.
func NewService(store Store, sender Sender, sched Scheduler, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		sender: sender,
		sched:  sched,
		logger: logger,
		now:    time.Now,
	}
}

// Key identifies the reminder of a hive's visit at the given instant.
func Key(hiveID string, at time.Time) string {
	return hiveID + "|" + at.UTC().Format(time.RFC3339)
}

// ScheduleVisit schedules the standard visit reminder for hive at the given instant.
// Scheduling the same hive and instant twice has no further effect.
func (s *Service) ScheduleVisit(ctx context.Context, hive models.Hive, at time.Time) error {
	name := strings.TrimSpace(hive.Name)
	if name == "" {
		name = hive.ID
	}
	return s.Schedule(ctx, models.Reminder{
		Key:     Key(hive.ID, at),
		HiveID:  hive.ID,
		Title:   DefaultTitle,
		Message: fmt.Sprintf("Está na hora de visitar a colmeia %s", name),
		FireAt:  at,
	})
}

// Schedule persists r and registers its delivery.
func (s *Service) Schedule(ctx context.Context, r models.Reminder) error {
	if s.sender == nil {
		return ErrUnavailable
	}
	if r.Key == "" || r.FireAt.IsZero() {
		return ErrInvalidReminder
	}
	if r.Title == "" {
		r.Title = DefaultTitle
	}
	r.CreatedAt = s.now()

	saved, created, err := s.store.SaveReminder(ctx, r)
	if err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	if !created {
		s.logger.Debug("reminder already scheduled",
			zap.String("key", r.Key),
			zap.Bool("delivered", saved.Delivered()))
		return nil
	}

	s.register(saved)
	s.logger.Info("reminder scheduled",
		zap.String("reminder_id", saved.ID),
		zap.String("hive_id", saved.HiveID),
		zap.Time("fire_at", saved.FireAt))
	return nil
}

// Restore registers every pending reminder, typically at startup.
// Reminders already due fire as soon as the scheduler runs.
func (s *Service) Restore(ctx context.Context) (int, error) {
	if s.sender == nil {
		return 0, ErrUnavailable
	}
	pending, err := s.store.PendingReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("load pending reminders: %w", err)
	}
	for _, r := range pending {
		s.register(r)
	}
	return len(pending), nil
}

// DeliverDue sends every pending reminder whose fire time has passed.
func (s *Service) DeliverDue(ctx context.Context) (int, error) {
	if s.sender == nil {
		return 0, ErrUnavailable
	}
	pending, err := s.store.PendingReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("load pending reminders: %w", err)
	}

	now := s.now()
	delivered := 0
	for _, r := range pending {
		if r.FireAt.After(now) {
			continue
		}
		if s.deliver(ctx, r) {
			delivered++
		}
	}
	return delivered, nil
}

// Sweep is the scheduler job that delivers overdue reminders.
func (s *Service) Sweep(ctx context.Context) {
	n, err := s.DeliverDue(ctx)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			s.logger.Error("reminder sweep failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		s.logger.Info("reminder sweep delivered overdue reminders", zap.Int("count", n))
	}
}

func (s *Service) register(r models.Reminder) {
	s.sched.Once(r.FireAt, "reminder "+r.ID, func(ctx context.Context) {
		s.deliver(ctx, r)
	})
}

// deliver claims r and sends it. Delivery is not retried once claimed.
func (s *Service) deliver(ctx context.Context, r models.Reminder) bool {
	claimed, err := s.store.ClaimReminder(ctx, r.ID, s.now())
	if err != nil {
		s.logger.Error("failed to claim reminder", zap.String("reminder_id", r.ID), zap.Error(err))
		return false
	}
	if !claimed {
		return false
	}

	n := models.Notification{
		Title: r.Title,
		Body:  r.Message,
		Data:  map[string]string{"hive_id": r.HiveID},
	}
	if err := s.sender.Send(ctx, n); err != nil {
		s.logger.Error("failed to deliver reminder", zap.String("reminder_id", r.ID), zap.Error(err))
		return false
	}

	s.logger.Info("reminder delivered", zap.String("reminder_id", r.ID), zap.String("hive_id", r.HiveID))
	return true
}
