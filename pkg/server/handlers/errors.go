package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/inquiro"
)

// ErrorsHandler serves the accumulated error ledger.
type ErrorsHandler struct {
	reporter inquiro.ErrorReporter
}

// NewErrorsHandler creates an errors handler.
func NewErrorsHandler(reporter inquiro.ErrorReporter) *ErrorsHandler {
	return &ErrorsHandler{reporter: reporter}
}

// Stats handles GET /api/errors/stats.
func (h *ErrorsHandler) Stats(c *gin.Context) {
	if h.reporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "error tracking is not configured",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"stats":    h.reporter.ErrorStats(),
		"analysis": h.reporter.ErrorAnalysis(),
	})
}
