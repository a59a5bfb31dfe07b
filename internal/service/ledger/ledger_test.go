package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/beeconnect/server/internal/domain/models"
)

type memStore struct {
	mu   sync.Mutex
	seq  int64
	recs []models.Inspection
	err  error
}

func (m *memStore) AppendInspection(_ context.Context, rec models.Inspection) (models.Inspection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.Inspection{}, m.err
	}
	m.seq++
	rec.Seq = m.seq
	rec.ID = fmt.Sprintf("insp-%d", m.seq)
	m.recs = append(m.recs, rec)
	return rec, nil
}

func (m *memStore) ListInspections(_ context.Context, hiveID string) ([]models.Inspection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Inspection
	for _, r := range m.recs {
		if r.HiveID == hiveID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeHives map[string]models.Hive

func (f fakeHives) GetHive(_ context.Context, id string) (models.Hive, error) {
	h, ok := f[id]
	if !ok {
		return models.Hive{}, errors.New("not found")
	}
	return h, nil
}

type scheduledVisit struct {
	hive models.Hive
	at   time.Time
}

type fakeScheduler struct {
	calls []scheduledVisit
	err   error
}

func (f *fakeScheduler) ScheduleVisit(_ context.Context, hive models.Hive, at time.Time) error {
	f.calls = append(f.calls, scheduledVisit{hive: hive, at: at})
	return f.err
}

func newTestService(store Store, sched VisitScheduler, logger *zap.Logger) *Service {
	svc := NewService(store, fakeHives{"H": {ID: "H", Name: "Colmeia 1"}}, sched, Options{Location: time.UTC, PageSize: 2}, logger)
	svc.now = func() time.Time { return time.Date(2024, time.May, 10, 18, 0, 0, 0, time.UTC) }
	return svc
}

func dates(recs []models.Inspection) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Date
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAppendAndListNewestFirst(t *testing.T) {
	store := &memStore{}
	sched := &fakeScheduler{}
	svc := newTestService(store, sched, nil)
	ctx := context.Background()

	for _, rec := range []models.Inspection{
		{Date: "01/05/2024", Feeding: "xarope"},
		{Date: "10/05/2024", NextVisit: "15/05/2024 09:00"},
		{Date: "20/05/2024", Notes: "rainha vista"},
	} {
		if _, err := svc.Append(ctx, "H", rec); err != nil {
			t.Fatalf("Append(%s): %v", rec.Date, err)
		}
	}

	pages, err := svc.List(ctx, "H", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if pages.Count() != 2 {
		t.Fatalf("expected 2 pages, got %d", pages.Count())
	}
	if got := dates(pages.Page(0)); !equalStrings(got, []string{"20/05/2024", "10/05/2024"}) {
		t.Errorf("page 0 = %v", got)
	}
	if got := dates(pages.Page(1)); !equalStrings(got, []string{"01/05/2024"}) {
		t.Errorf("page 1 = %v", got)
	}
	if got := dates(pages.Flatten()); !equalStrings(got, []string{"20/05/2024", "10/05/2024", "01/05/2024"}) {
		t.Errorf("flatten = %v", got)
	}

	if len(sched.calls) != 1 {
		t.Fatalf("expected one reminder, got %d", len(sched.calls))
	}
	if sched.calls[0].hive.Name != "Colmeia 1" {
		t.Errorf("reminder hive = %+v", sched.calls[0].hive)
	}
	if want := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC); !sched.calls[0].at.Equal(want) {
		t.Errorf("reminder at %v, want %v", sched.calls[0].at, want)
	}
}

func TestListTiesMostRecentFirst(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store, nil, nil)
	ctx := context.Background()

	for _, note := range []string{"first", "second", "third"} {
		if _, err := svc.Append(ctx, "H", models.Inspection{Date: "05/05/2024", Notes: note}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Append(ctx, "other", models.Inspection{Date: "06/05/2024"}); err != nil {
		t.Fatal(err)
	}

	pages, err := svc.List(ctx, "H", 10)
	if err != nil {
		t.Fatal(err)
	}
	var notes []string
	for _, r := range pages.Flatten() {
		notes = append(notes, r.Notes)
	}
	if !equalStrings(notes, []string{"third", "second", "first"}) {
		t.Errorf("tie order = %v", notes)
	}
}

func TestAppendValidation(t *testing.T) {
	svc := newTestService(&memStore{}, nil, nil)

	tests := []struct {
		name   string
		hiveID string
		rec    models.Inspection
	}{
		{name: "missing hive", hiveID: " ", rec: models.Inspection{Date: "01/05/2024"}},
		{name: "bad date", hiveID: "H", rec: models.Inspection{Date: "2024-05-01"}},
		{name: "blank date", hiveID: "H", rec: models.Inspection{}},
		{name: "bad next visit", hiveID: "H", rec: models.Inspection{Date: "01/05/2024", NextVisit: "31/13/2024 99:99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Append(context.Background(), tt.hiveID, tt.rec)
			if !errors.Is(err, ErrInvalidInspection) {
				t.Fatalf("expected ErrInvalidInspection, got %v", err)
			}
		})
	}
}

func TestAppendSurvivesReminderFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := &memStore{}
	sched := &fakeScheduler{err: errors.New("exact alarms not permitted")}
	svc := newTestService(store, sched, zap.New(core))

	saved, err := svc.Append(context.Background(), "H", models.Inspection{Date: "10/05/2024", NextVisit: "15/05/2024 09:00"})
	if err != nil {
		t.Fatalf("append must succeed when the reminder fails: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected store-assigned id")
	}
	if logs.FilterMessage("visit reminder not scheduled").Len() != 1 {
		t.Errorf("expected a warning, got %v", logs.All())
	}
}

func TestAppendSkipsPastNextVisit(t *testing.T) {
	sched := &fakeScheduler{}
	svc := newTestService(&memStore{}, sched, nil)

	if _, err := svc.Append(context.Background(), "H", models.Inspection{Date: "01/05/2024", NextVisit: "02/05/2024 09:00"}); err != nil {
		t.Fatal(err)
	}
	if len(sched.calls) != 0 {
		t.Errorf("past visits must not be scheduled, got %d calls", len(sched.calls))
	}
}

func TestAppendStoreFailure(t *testing.T) {
	sched := &fakeScheduler{}
	svc := newTestService(&memStore{err: errors.New("unavailable")}, sched, nil)

	if _, err := svc.Append(context.Background(), "H", models.Inspection{Date: "10/05/2024", NextVisit: "15/05/2024 09:00"}); err == nil {
		t.Fatal("expected store error")
	}
	if len(sched.calls) != 0 {
		t.Error("no reminder may be scheduled when the append failed")
	}
}

func TestSortNewestFirstPutsUnparseableLast(t *testing.T) {
	in := []models.Inspection{
		{Date: "??", Seq: 1},
		{Date: "01/01/2023", Seq: 2},
		{Date: "31/12/2023", Seq: 3},
	}
	got := dates(SortNewestFirst(in))
	if !equalStrings(got, []string{"31/12/2023", "01/01/2023", "??"}) {
		t.Errorf("order = %v", got)
	}
}
