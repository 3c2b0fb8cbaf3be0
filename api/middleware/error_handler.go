// api/middleware/error_handler.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chideraz/country-currency-api/internal/core"
	"github.com/chideraz/country-currency-api/internal/logger"
	"github.com/chideraz/country-currency-api/internal/source"
	"github.com/chideraz/country-currency-api/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

// ErrorHandler creates a Gin middleware for centralized error handling.
// Handlers attach errors with c.Error and this maps them onto the response:
// not-found lookups to 404, failing external feeds to 503, bad query input
// to 400, and everything else to a logged 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request using subsequent handlers
		c.Next()

		if len(c.Errors) == 0 {
			return // No errors, nothing to do
		}

		// Only the last error drives the response.
		err := c.Errors.Last().Err
		customLog.Printf("[ErrorHandler] Detected error: %v | Type: %T", err, err)

		var statusCode int
		var userMessage string

		if errors.Is(err, storage.ErrCountryNotFound) {
			statusCode = http.StatusNotFound
			userMessage = err.Error()
		} else if errors.Is(err, source.ErrSourceUnavailable) {
			// A failing feed aborts the refresh before any write happens.
			statusCode = http.StatusServiceUnavailable
			userMessage = err.Error()
		} else if errors.Is(err, core.ErrInvalidQuery) {
			statusCode = http.StatusBadRequest
			userMessage = err.Error()
		} else {
			statusCode = http.StatusInternalServerError
			userMessage = "An unexpected internal server error occurred."
			customLog.Warnf("Unhandled error type: %T, Error: %v", err, err)
		}

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(statusCode, gin.H{"error": userMessage})
		} else {
			customLog.Printf("[ErrorHandler] Warning: Response already written before handling error.")
		}
	}
}
