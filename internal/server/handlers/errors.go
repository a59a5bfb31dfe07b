package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/repository"
	"github.com/beeconnect/server/internal/service/apiaries"
	"github.com/beeconnect/server/internal/service/harvest"
	"github.com/beeconnect/server/internal/service/ledger"
)

// errServiceDisabled is reported for optional integrations that are not configured.
var errServiceDisabled = errors.New("service not configured")

// respondError maps service errors to HTTP statuses with a JSON body.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ledger.ErrInvalidInspection),
		errors.Is(err, apiaries.ErrInvalid),
		errors.Is(err, harvest.ErrInvalidHarvest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errServiceDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable, try again later"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
