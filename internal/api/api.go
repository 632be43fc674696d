package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/stockweeks/internal/api/handlers"
	"github.com/andresuchdata/stockweeks/internal/api/middleware"
	"github.com/andresuchdata/stockweeks/internal/feed"
	"github.com/andresuchdata/stockweeks/internal/metrics"
	"github.com/andresuchdata/stockweeks/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Reports *service.ReportService
	Store   *feed.Store
	Metrics *metrics.Metrics
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if services != nil && services.Metrics != nil {
		router.Use(middleware.Metrics(services.Metrics))
	}

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	var store *feed.Store
	if services != nil {
		store = services.Store
	}
	router.GET("/health", handlers.NewHealthHandler(store).GetHealth)

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.GET("/metrics", middleware.MetricsEndpoint(services.Metrics))
	}

	apiGroup := router.Group("/api/v1")
	if services.Reports != nil {
		h := handlers.NewStockWeeksHandler(services.Reports)

		apiGroup.GET("/brands", h.GetBrands)
		brandGroup := apiGroup.Group("/brands/:brand")
		{
			brandGroup.GET("/years", h.GetYears)
			brandGroup.GET("/heatmap", h.GetHeatmap)
			brandGroup.GET("/summary", h.GetSummary)
			brandGroup.GET("/monthly", h.GetMonthly)
			brandGroup.GET("/operations", h.GetOperations)
		}

		apiGroup.GET("/weeks/compute", h.Compute)
		apiGroup.POST("/weeks/compute", h.Compute)
		apiGroup.POST("/feeds/reload", h.ReloadFeeds)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
