package handlers

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/calendar"
	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/service/export"
	"github.com/beeconnect/server/internal/service/visits"
)

const defaultFeedDays = 60

// VisitService answers calendar queries.
type VisitService interface {
	Month(ctx context.Context, year int, month time.Month) (calendar.Grid, error)
	OnDate(ctx context.Context, date models.Date) ([]visits.ApiaryVisits, error)
	Upcoming(ctx context.Context, from models.Date, days int) ([]models.VisitMarker, error)
}

// CalendarHandler exposes the visit calendar.
type CalendarHandler struct {
	visits VisitService
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewCalendarHandler constructs the HTTP handler adapter.
func NewCalendarHandler(svc VisitService, loc *time.Location, logger *zap.Logger) *CalendarHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarHandler{visits: svc, loc: loc, logger: logger, now: time.Now}
}

type monthResponse struct {
	calendar.Grid
	VisitDates []models.Date `json:"visit_dates"`
	Prev       string        `json:"prev"`
	Next       string        `json:"next"`
}

// Month returns the grid of the requested month, defaulting to the current one.
func (h *CalendarHandler) Month(c *gin.Context) {
	today := h.now().In(h.loc)
	year, err := intQuery(c, "year", today.Year())
	if err != nil {
		badRequest(c, "year must be an integer")
		return
	}
	month, err := intQuery(c, "month", int(today.Month()))
	if err != nil || month < 1 || month > 12 {
		badRequest(c, "month must be between 1 and 12")
		return
	}

	grid, err := h.visits.Month(c.Request.Context(), year, time.Month(month))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	py, pm := calendar.Prev(year, time.Month(month))
	ny, nm := calendar.Next(year, time.Month(month))
	c.JSON(http.StatusOK, monthResponse{
		Grid:       grid,
		VisitDates: grid.VisitDates(),
		Prev:       time.Date(py, pm, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
		Next:       time.Date(ny, nm, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
	})
}

// OnDate lists the visits due on ?date=YYYY-MM-DD grouped by apiary.
func (h *CalendarHandler) OnDate(c *gin.Context) {
	date, err := models.ParseDate(c.Query("date"))
	if err != nil {
		badRequest(c, "date must be formatted as YYYY-MM-DD")
		return
	}

	groups, err := h.visits.OnDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "apiaries": groups})
}

// Feed serves upcoming visits as an iCalendar feed.
func (h *CalendarHandler) Feed(c *gin.Context) {
	days, err := intQuery(c, "days", defaultFeedDays)
	if err != nil || days <= 0 {
		badRequest(c, "days must be a positive integer")
		return
	}

	now := h.now().In(h.loc)
	markers, err := h.visits.Upcoming(c.Request.Context(), models.DateOf(now), days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteICS(&buf, markers, export.ICSOptions{Name: "BeeConnect visitas", Location: h.loc, Now: now}); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=beeconnect_visitas.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}
