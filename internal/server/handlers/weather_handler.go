package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/pkg/clients/weather"
)

// WeatherClient fetches conditions for coordinates.
type WeatherClient interface {
	Current(ctx context.Context, lat, lon float64) (weather.Current, error)
	Forecast(ctx context.Context, lat, lon float64) ([]weather.ForecastDay, error)
}

// ApiaryLookup resolves an apiary by id.
type ApiaryLookup interface {
	GetApiary(ctx context.Context, id string) (models.Apiary, error)
}

// WeatherHandler serves the weather panel of an apiary.
type WeatherHandler struct {
	client   WeatherClient
	apiaries ApiaryLookup
	logger   *zap.Logger
}

// NewWeatherHandler constructs the HTTP handler adapter. A nil client disables the endpoint.
func NewWeatherHandler(client WeatherClient, apiaries ApiaryLookup, logger *zap.Logger) *WeatherHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherHandler{client: client, apiaries: apiaries, logger: logger}
}

// Get returns current conditions and the midday forecast at the apiary.
func (h *WeatherHandler) Get(c *gin.Context) {
	if h.client == nil {
		respondError(c, h.logger, errServiceDisabled)
		return
	}

	ctx := c.Request.Context()
	apiary, err := h.apiaries.GetApiary(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !apiary.HasCoordinates() {
		badRequest(c, "apiary has no coordinates")
		return
	}

	current, err := h.client.Current(ctx, apiary.Latitude, apiary.Longitude)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	forecast, err := h.client.Forecast(ctx, apiary.Latitude, apiary.Longitude)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"apiary_id": apiary.ID,
		"current":   current,
		"forecast":  forecast,
	})
}
