package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds every scheduled run.
const jobTimeout = 2 * time.Minute

// Job is a unit of scheduled work.
type Job func(ctx context.Context)

// Scheduler manages recurring and one-shot tasks.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates a new scheduler evaluating cron expressions in loc.
func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	cl := cronLogger{logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	return &Scheduler{
		cron:   c,
		logger: logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Int("entries", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Every registers job on a standard five-field cron expression.
func (s *Scheduler) Every(spec, name string, job Job) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return 0, fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return id, nil
}

// Once runs job a single time at the given instant. Instants in the past fire
// as soon as the scheduler is running. The entry removes itself after running.
func (s *Scheduler) Once(at time.Time, name string, job Job) cron.EntryID {
	var id cron.EntryID
	ready := make(chan struct{})
	id = s.cron.Schedule(&onceSchedule{at: at}, cron.FuncJob(func() {
		<-ready
		s.run(name, job)
		s.cron.Remove(id)
	}))
	close(ready)
	return id
}

// Remove cancels a scheduled entry.
func (s *Scheduler) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

// Len returns the number of registered entries.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	job(ctx)
	s.logger.Debug("scheduled job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
}

// onceSchedule yields its instant on the first call and never again.
type onceSchedule struct {
	at       time.Time
	consumed bool
}

func (o *onceSchedule) Next(t time.Time) time.Time {
	if o.consumed {
		return time.Time{}
	}
	o.consumed = true
	if o.at.After(t) {
		return o.at
	}
	return t
}

// cronLogger routes cron's internal logging to zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
