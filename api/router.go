// api/router.go
package api

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/chideraz/country-currency-api/api/handlers"
	"github.com/chideraz/country-currency-api/api/middleware"
	"github.com/chideraz/country-currency-api/config"
	"github.com/chideraz/country-currency-api/internal/artifact"
	"github.com/chideraz/country-currency-api/internal/enrich"
	"github.com/chideraz/country-currency-api/internal/refresh"
	"github.com/chideraz/country-currency-api/internal/source"
)

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(db *sql.DB, cfg *config.Config) *gin.Engine {
	router := gin.Default() // Includes Logger and Recovery

	router.Use(cors.Default())
	router.Use(middleware.RequestID())
	// It should run after basic middleware like Logger/Recovery
	// but before the routing happens, so it wraps the handlers.
	router.Use(middleware.ErrorHandler())

	// Wire the refresh pipeline: feeds -> enrichment -> store -> artifact.
	sourceClient := source.NewHTTPClient(cfg)
	enricher := enrich.NewEnricher(nil)
	artifacts := artifact.NewGenerator(cfg.SummaryImagePath)
	coordinator := refresh.NewCoordinator(db, sourceClient, enricher, artifacts)

	countryHandler := handlers.NewCountryHandler(db, cfg, coordinator, artifacts)

	// Refresh cycles hit both external feeds; keep callers on a short leash.
	refreshLimiter := middleware.NewRateLimiter(5, time.Minute)

	router.GET("/", countryHandler.Root)
	router.GET("/status", countryHandler.Status)

	countryRoutes := router.Group("/countries")
	{
		countryRoutes.POST("/refresh", middleware.RateLimitMiddleware(refreshLimiter), countryHandler.Refresh)
		countryRoutes.GET("", countryHandler.List)
		countryRoutes.GET("/image", countryHandler.SummaryImage)
		countryRoutes.GET("/:name", countryHandler.Get)
		countryRoutes.DELETE("/:name", countryHandler.Delete)
	}

	return router
}
