package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail_dashboard/internal/config"
	"retail_dashboard/internal/retail"
)

// InitRoutes registers every dashboard endpoint on the given Gin engine.
// It initializes the load cache, the aggregation service and the handler,
// then binds each HTTP method and path to the appropriate handler function.
func InitRoutes(e *gin.Engine, cfg config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	cache := retail.NewLoadCache()
	service := retail.NewService(logger)
	handler, err := NewDashboardHandler(cache, service, cfg, logger)
	if err != nil {
		return err
	}

	e.Use(RequestID(), RequestLogger(logger))

	e.GET("/", handler.handleSalesPage)
	e.GET("/rfm", handler.handleSegmentPage)

	e.GET("/api/countries", handler.handleCountries)
	e.GET("/api/dashboard", handler.handleDashboard)
	e.GET("/api/kpis", handler.handleKPIs)
	e.GET("/api/charts/monthly-revenue", handler.handleMonthlyRevenue)
	e.GET("/api/charts/top-products", handler.handleTopProducts)
	e.GET("/api/charts/hourly-revenue", handler.handleHourlyRevenue)
	e.GET("/api/charts/weekday-revenue", handler.handleWeekdayRevenue)
	e.GET("/api/charts/segment-distribution", handler.handleSegmentDistribution)
	e.GET("/api/charts/segment-behavior", handler.handleSegmentBehavior)
	e.GET("/api/preview", handler.handlePreview)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	return nil
}
