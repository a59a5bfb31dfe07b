package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Apiaries    *handlers.ApiaryHandler
	Inspections *handlers.InspectionHandler
	Calendar    *handlers.CalendarHandler
	Harvests    *handlers.HarvestHandler
	Weather     *handlers.WeatherHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/apiaries", h.Apiaries.CreateApiary)
	r.GET("/apiaries", h.Apiaries.ListApiaries)
	r.GET("/apiaries/:id", h.Apiaries.GetApiary)
	r.GET("/apiaries/:id/hives", h.Apiaries.ListHives)
	r.POST("/apiaries/:id/harvests", h.Harvests.Record)
	r.GET("/apiaries/:id/harvests", h.Harvests.Stats)
	r.GET("/apiaries/:id/harvests/export.xlsx", h.Harvests.Export)
	r.GET("/apiaries/:id/weather", h.Weather.Get)

	r.POST("/hives", h.Apiaries.CreateHive)
	r.GET("/hives/:id", h.Apiaries.GetHive)
	r.PUT("/hives/:id", h.Apiaries.UpdateHive)
	r.POST("/hives/:id/inspections", h.Inspections.Append)
	r.GET("/hives/:id/inspections", h.Inspections.List)
	r.GET("/hives/:id/inspections/export.xlsx", h.Inspections.Export)

	r.GET("/calendar", h.Calendar.Month)
	r.GET("/calendar/visits", h.Calendar.OnDate)
	r.GET("/calendar/visits.ics", h.Calendar.Feed)

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
