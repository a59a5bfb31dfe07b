// Package visits maps scheduled follow-up visits onto calendar dates.
package visits

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/calendar"
	"github.com/beeconnect/server/internal/domain/models"
)

// Store is the read side the aggregator needs.
type Store interface {
	ListHives(ctx context.Context) ([]models.Hive, error)
	ListInspections(ctx context.Context, hiveID string) ([]models.Inspection, error)
	GetApiary(ctx context.Context, id string) (models.Apiary, error)
}

// Options tunes how markers are placed on the calendar.
type Options struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// ApiaryVisits groups the hives of one apiary due on the same day.
type ApiaryVisits struct {
	ApiaryID   string               `json:"apiary_id"`
	ApiaryName string               `json:"apiary_name"`
	Visits     []models.VisitMarker `json:"visits"`
}

// Aggregator builds visit markers from every hive's ledger.
type Aggregator struct {
	store     Store
	loc       *time.Location
	weekStart time.Weekday
	logger    *zap.Logger
	now       func() time.Time
}

// NewAggregator creates a new aggregator.
func NewAggregator(store Store, opts Options, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Aggregator{
		store:     store,
		loc:       opts.Location,
		weekStart: opts.WeekStart,
		logger:    logger,
		now:       time.Now,
	}
}

// Markers runs one aggregation pass over all hives. Hives without a name or an
// apiary are skipped, as are records whose next visit does not parse.
func (a *Aggregator) Markers(ctx context.Context) ([]models.VisitMarker, error) {
	hives, err := a.store.ListHives(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hives: %w", err)
	}

	names := a.apiaryNames(ctx)
	var out []models.VisitMarker
	for _, hive := range hives {
		if hive.Name == "" || hive.ApiaryID == "" {
			a.logger.Debug("skipping hive without name or apiary", zap.String("hive_id", hive.ID))
			continue
		}
		recs, err := a.store.ListInspections(ctx, hive.ID)
		if err != nil {
			return nil, fmt.Errorf("list inspections for hive %s: %w", hive.ID, err)
		}
		out = append(out, a.collect(hive, recs, names)...)
	}

	sortMarkers(out)
	return out, nil
}

// Month returns the calendar grid for year/month with visit days marked.
func (a *Aggregator) Month(ctx context.Context, year int, month time.Month) (calendar.Grid, error) {
	markers, err := a.Markers(ctx)
	if err != nil {
		return calendar.Grid{}, err
	}

	grid := calendar.Build(year, month, a.weekStart)
	today := models.DateOf(a.now().In(a.loc))
	return grid.Mark(markers).WithToday(today), nil
}

// OnDate returns the visits due on date grouped by apiary, then hive.
func (a *Aggregator) OnDate(ctx context.Context, date models.Date) ([]ApiaryVisits, error) {
	markers, err := a.Markers(ctx)
	if err != nil {
		return nil, err
	}

	byApiary := make(map[string]*ApiaryVisits)
	var order []string
	for _, m := range markers {
		if m.Date != date {
			continue
		}
		group, ok := byApiary[m.ApiaryID]
		if !ok {
			group = &ApiaryVisits{ApiaryID: m.ApiaryID, ApiaryName: m.ApiaryName}
			byApiary[m.ApiaryID] = group
			order = append(order, m.ApiaryID)
		}
		group.Visits = append(group.Visits, m)
	}

	out := make([]ApiaryVisits, 0, len(order))
	for _, id := range order {
		group := byApiary[id]
		sort.SliceStable(group.Visits, func(i, j int) bool {
			if group.Visits[i].HiveName != group.Visits[j].HiveName {
				return group.Visits[i].HiveName < group.Visits[j].HiveName
			}
			return group.Visits[i].At.Before(group.Visits[j].At)
		})
		out = append(out, *group)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ApiaryName < out[j].ApiaryName
	})
	return out, nil
}

// Upcoming returns the markers dated within [from, from+days).
func (a *Aggregator) Upcoming(ctx context.Context, from models.Date, days int) ([]models.VisitMarker, error) {
	markers, err := a.Markers(ctx)
	if err != nil {
		return nil, err
	}

	until := from.AddDays(days)
	out := make([]models.VisitMarker, 0, len(markers))
	for _, m := range markers {
		if !m.Date.Before(from) && m.Date.Before(until) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (a *Aggregator) collect(hive models.Hive, recs []models.Inspection, names func(string) string) []models.VisitMarker {
	var out []models.VisitMarker
	for _, rec := range recs {
		if !rec.HasNextVisit() {
			continue
		}
		at, err := models.ParseNextVisit(rec.NextVisit, a.loc)
		if err != nil {
			a.logger.Debug("skipping unparseable next visit",
				zap.String("hive_id", hive.ID),
				zap.String("inspection_id", rec.ID),
				zap.String("next_visit", rec.NextVisit))
			continue
		}
		out = append(out, models.VisitMarker{
			Date:       models.DateOf(at),
			At:         at,
			HiveID:     hive.ID,
			HiveName:   hive.Name,
			ApiaryID:   hive.ApiaryID,
			ApiaryName: names(hive.ApiaryID),
		})
	}
	return out
}

// apiaryNames returns a resolver memoized for one aggregation pass.
func (a *Aggregator) apiaryNames(ctx context.Context) func(string) string {
	memo := make(map[string]string)
	return func(id string) string {
		if name, ok := memo[id]; ok {
			return name
		}
		name := models.UnknownApiaryName
		apiary, err := a.store.GetApiary(ctx, id)
		if err != nil {
			a.logger.Debug("apiary lookup failed", zap.String("apiary_id", id), zap.Error(err))
		} else if apiary.Name != "" {
			name = apiary.Name
		}
		memo[id] = name
		return name
	}
}

func sortMarkers(ms []models.VisitMarker) {
	sort.SliceStable(ms, func(i, j int) bool {
		if !ms[i].At.Equal(ms[j].At) {
			return ms[i].At.Before(ms[j].At)
		}
		return ms[i].HiveName < ms[j].HiveName
	})
}
