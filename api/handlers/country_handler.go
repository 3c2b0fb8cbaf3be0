// api/handlers/country_handler.go
package handlers

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/chideraz/country-currency-api/api/models"
	"github.com/chideraz/country-currency-api/config"
	"github.com/chideraz/country-currency-api/internal/artifact"
	"github.com/chideraz/country-currency-api/internal/core"
	"github.com/chideraz/country-currency-api/internal/logger"
	"github.com/chideraz/country-currency-api/internal/refresh"
	"github.com/chideraz/country-currency-api/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

// CountryHandler holds dependencies for the country endpoints.
type CountryHandler struct {
	DB        *sql.DB
	Cfg       *config.Config
	Refresher *refresh.Coordinator
	Artifacts *artifact.Generator
}

// NewCountryHandler creates a new CountryHandler.
func NewCountryHandler(db *sql.DB, cfg *config.Config, refresher *refresh.Coordinator, artifacts *artifact.Generator) *CountryHandler {
	return &CountryHandler{
		DB:        db,
		Cfg:       cfg,
		Refresher: refresher,
		Artifacts: artifacts,
	}
}

// Root handles the liveness endpoint.
func (h *CountryHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{
		Message: "Country & Currency Insights API. See /countries and /status.",
	})
}

// Refresh runs one full refresh cycle against both external feeds.
func (h *CountryHandler) Refresh(c *gin.Context) {
	result, err := h.Refresher.Refresh(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.RefreshResponse{
		Message:        "Refresh completed successfully.",
		TotalCountries: result.TotalCountries,
	})
}

// List returns countries matching the region/currency filters, optionally
// sorted by estimated GDP.
func (h *CountryHandler) List(c *gin.Context) {
	opts, err := core.ParseCountryListOptions(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	countries, err := storage.ListCountries(c.Request.Context(), h.DB, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

// Get returns a single country; the name match is case-insensitive.
func (h *CountryHandler) Get(c *gin.Context) {
	name := c.Param("name")
	country, err := storage.GetCountry(c.Request.Context(), h.DB, name)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, country)
}

// Delete removes a single country; the name match is case-insensitive.
func (h *CountryHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := storage.DeleteCountry(c.Request.Context(), h.DB, name); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Country deleted successfully."})
}

// Status reports the aggregate count and last committed refresh time.
func (h *CountryHandler) Status(c *gin.Context) {
	total, err := storage.CountCountries(c.Request.Context(), h.DB)
	if err != nil {
		_ = c.Error(err)
		return
	}
	lastRefreshed, err := storage.LastRefreshed(c.Request.Context(), h.DB)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{
		TotalCountries:  total,
		LastRefreshedAt: lastRefreshed,
	})
}

// SummaryImage serves the cached summary artifact rendered after the last
// successful refresh.
func (h *CountryHandler) SummaryImage(c *gin.Context) {
	data, err := os.ReadFile(h.Artifacts.Path())
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Summary image has not been generated yet."})
			return
		}
		customLog.Warnf("Handler: Failed to read summary image: %v", err)
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}
