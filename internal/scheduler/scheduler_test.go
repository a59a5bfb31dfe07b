package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestOnceFiresPastInstantImmediately(t *testing.T) {
	s := NewScheduler(time.UTC, zaptest.NewLogger(t))
	var runs atomic.Int32
	s.Once(time.Now().Add(-time.Hour), "past", func(context.Context) { runs.Add(1) })

	s.Start()
	defer s.Stop()

	waitFor(t, func() bool { return runs.Load() == 1 })
	waitFor(t, func() bool { return s.Len() == 0 })
}

func TestOnceRunsExactlyOnce(t *testing.T) {
	s := NewScheduler(time.UTC, nil)
	s.Start()
	defer s.Stop()

	var runs atomic.Int32
	s.Once(time.Now().Add(50*time.Millisecond), "soon", func(ctx context.Context) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("jobs must run with a deadline")
		}
		runs.Add(1)
	})

	waitFor(t, func() bool { return runs.Load() == 1 })
	time.Sleep(100 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
	waitFor(t, func() bool { return s.Len() == 0 })
}

func TestRemoveCancelsOnce(t *testing.T) {
	s := NewScheduler(time.UTC, nil)
	var runs atomic.Int32
	id := s.Once(time.Now().Add(200*time.Millisecond), "cancelled", func(context.Context) { runs.Add(1) })
	s.Remove(id)

	s.Start()
	defer s.Stop()
	time.Sleep(400 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatal("removed entry must not run")
	}
}

func TestEveryRejectsBadSpec(t *testing.T) {
	s := NewScheduler(time.UTC, nil)
	if _, err := s.Every("not a cron", "bad", func(context.Context) {}); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := s.Every("*/5 * * * *", "sweep", func(context.Context) {}); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("entries = %d", s.Len())
	}
}

func TestOnceScheduleConsumed(t *testing.T) {
	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	at := now.Add(time.Hour)
	o := &onceSchedule{at: at}
	if got := o.Next(now); !got.Equal(at) {
		t.Fatalf("first Next = %v", got)
	}
	if got := o.Next(at); !got.IsZero() {
		t.Fatalf("second Next = %v, want zero", got)
	}
}
