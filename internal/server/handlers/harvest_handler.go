package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/service/export"
)

// HarvestService records and summarizes harvests.
type HarvestService interface {
	Record(ctx context.Context, apiaryID string, amountKg float64, date time.Time) (models.Harvest, error)
	Stats(ctx context.Context, apiaryID string) (models.HarvestStats, error)
}

// HarvestHandler exposes harvest statistics.
type HarvestHandler struct {
	svc    HarvestService
	loc    *time.Location
	logger *zap.Logger
}

// NewHarvestHandler constructs the HTTP handler adapter.
func NewHarvestHandler(svc HarvestService, loc *time.Location, logger *zap.Logger) *HarvestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &HarvestHandler{svc: svc, loc: loc, logger: logger}
}

type recordHarvestRequest struct {
	AmountKg float64 `json:"amount_kg" binding:"required"`
	Date     string  `json:"date"`
}

// Record logs a harvest against the apiary in the path.
func (h *HarvestHandler) Record(c *gin.Context) {
	var req recordHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var at time.Time
	if req.Date != "" {
		d, err := models.ParseDate(req.Date)
		if err != nil {
			badRequest(c, "date must be formatted as YYYY-MM-DD")
			return
		}
		at = d.Time(h.loc)
	}

	saved, err := h.svc.Record(c.Request.Context(), c.Param("id"), req.AmountKg, at)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Stats returns totals and daily sums for the apiary.
func (h *HarvestHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Export downloads the apiary's harvests as a workbook.
func (h *HarvestHandler) Export(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteHarvests(&buf, stats); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=colheitas_%s.xlsx", stats.ApiaryID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
