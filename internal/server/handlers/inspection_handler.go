package handlers

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/service/export"
	"github.com/beeconnect/server/internal/service/ledger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LedgerService appends to and pages through hive ledgers.
type LedgerService interface {
	Append(ctx context.Context, hiveID string, rec models.Inspection) (models.Inspection, error)
	List(ctx context.Context, hiveID string, pageSize int) (ledger.Pages, error)
	PageSize() int
}

// HiveLookup resolves a hive by id.
type HiveLookup interface {
	GetHive(ctx context.Context, id string) (models.Hive, error)
}

// InspectionHandler exposes a hive's inspection ledger.
type InspectionHandler struct {
	ledger LedgerService
	hives  HiveLookup
	logger *zap.Logger
}

// NewInspectionHandler constructs the HTTP handler adapter.
func NewInspectionHandler(svc LedgerService, hives HiveLookup, logger *zap.Logger) *InspectionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InspectionHandler{ledger: svc, hives: hives, logger: logger}
}

// Append stores a new inspection for the hive in the path.
func (h *InspectionHandler) Append(c *gin.Context) {
	var req models.Inspection
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	saved, err := h.ledger.Append(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// List returns one page of the ledger with navigation state.
// Out-of-range pages are clamped to the nearest valid page.
func (h *InspectionHandler) List(c *gin.Context) {
	page, err := intQuery(c, "page", 0)
	if err != nil {
		badRequest(c, "page must be an integer")
		return
	}
	size, err := intQuery(c, "page_size", h.ledger.PageSize())
	if err != nil || size <= 0 {
		badRequest(c, "page_size must be a positive integer")
		return
	}

	pages, err := h.ledger.List(c.Request.Context(), c.Param("id"), size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ledger.NewNavigator(pages, page).View())
}

// Export downloads the full ledger as a workbook.
func (h *InspectionHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	hive, err := h.hives.GetHive(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	pages, err := h.ledger.List(ctx, hive.ID, math.MaxInt32)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLedger(&buf, hive, pages.Flatten()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=inspecoes_%s.xlsx", hive.ID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
