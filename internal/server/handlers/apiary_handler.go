package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/domain/models"
)

// ApiaryService is the apiary and hive management surface.
type ApiaryService interface {
	CreateApiary(ctx context.Context, apiary models.Apiary) (models.Apiary, error)
	GetApiary(ctx context.Context, id string) (models.Apiary, error)
	ListApiaries(ctx context.Context) ([]models.Apiary, error)
	CreateHive(ctx context.Context, hive models.Hive) (models.Hive, error)
	GetHive(ctx context.Context, id string) (models.Hive, error)
	UpdateHive(ctx context.Context, id string, update models.HiveUpdate) (models.Hive, error)
	Hives(ctx context.Context, apiaryID string) ([]models.Hive, error)
}

// ApiaryHandler exposes apiaries and hives.
type ApiaryHandler struct {
	svc    ApiaryService
	logger *zap.Logger
}

// NewApiaryHandler constructs the HTTP handler adapter.
func NewApiaryHandler(svc ApiaryService, logger *zap.Logger) *ApiaryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApiaryHandler{svc: svc, logger: logger}
}

func (h *ApiaryHandler) CreateApiary(c *gin.Context) {
	var req models.Apiary
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	apiary, err := h.svc.CreateApiary(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, apiary)
}

func (h *ApiaryHandler) ListApiaries(c *gin.Context) {
	list, err := h.svc.ListApiaries(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []models.Apiary{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *ApiaryHandler) GetApiary(c *gin.Context) {
	apiary, err := h.svc.GetApiary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apiary)
}

func (h *ApiaryHandler) ListHives(c *gin.Context) {
	hives, err := h.svc.Hives(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if hives == nil {
		hives = []models.Hive{}
	}
	c.JSON(http.StatusOK, hives)
}

func (h *ApiaryHandler) CreateHive(c *gin.Context) {
	var req models.Hive
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	hive, err := h.svc.CreateHive(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, hive)
}

func (h *ApiaryHandler) GetHive(c *gin.Context) {
	hive, err := h.svc.GetHive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, hive)
}

func (h *ApiaryHandler) UpdateHive(c *gin.Context) {
	var req models.HiveUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	hive, err := h.svc.UpdateHive(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, hive)
}
