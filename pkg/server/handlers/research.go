// Package handlers implements the HTTP endpoints of the research API.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soundprediction/inquiro"
	"github.com/soundprediction/inquiro/pkg/errtrack"
	"github.com/soundprediction/inquiro/pkg/server/dto"
	"github.com/soundprediction/inquiro/pkg/storage"
	"github.com/soundprediction/inquiro/pkg/types"
)

// ResearchHandler handles research requests.
type ResearchHandler struct {
	researcher inquiro.Researcher
	store      storage.Store
	logger     *slog.Logger
}

// NewResearchHandler creates a research handler. The store may be nil, in
// which case reports are served but not persisted.
func NewResearchHandler(researcher inquiro.Researcher, store storage.Store, logger *slog.Logger) *ResearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResearchHandler{
		researcher: researcher,
		store:      store,
		logger:     logger,
	}
}

// statusFor maps a pipeline error onto an HTTP status.
func statusFor(err error) int {
	var verr *errtrack.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Research handles POST /api/research.
func (h *ResearchHandler) Research(c *gin.Context) {
	var req dto.ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := errtrack.NewValidationError(map[string]string{
			"body": "Request body must be a JSON object with a query field",
		})
		c.JSON(http.StatusBadRequest, errtrack.FormatError(verr))
		return
	}

	report, err := h.researcher.SearchAndAnalyze(c.Request.Context(), req.Query, req.ResolvedDepth())
	if err != nil {
		c.JSON(statusFor(err), errtrack.FormatError(err))
		return
	}

	researchID := uuid.NewString()
	if h.store != nil {
		if err := h.store.Save(c.Request.Context(), storage.KindReport, researchID, report); err != nil {
			// The caller still gets the report; only the replay copy is lost.
			h.logger.Error("failed to persist research report", "research_id", researchID, "error", err)
		}
	}

	c.JSON(http.StatusOK, dto.ResearchResponse{
		ResearchID: researchID,
		Report:     report,
	})
}

// GetResearch handles GET /api/research/:id.
func (h *ResearchHandler) GetResearch(c *gin.Context) {
	id := c.Param("id")

	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "report storage is not configured",
		})
		return
	}

	var report types.ResearchReport
	found, err := h.store.Get(c.Request.Context(), storage.KindReport, id, &report)
	if errors.Is(err, storage.ErrInvalidID) {
		verr := errtrack.NewValidationError(map[string]string{"id": "Research ID contains invalid characters"})
		c.JSON(http.StatusBadRequest, errtrack.FormatError(verr))
		return
	}
	if err != nil {
		h.logger.Error("failed to load research report", "research_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, errtrack.FormatError(err))
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "research report not found",
		})
		return
	}

	c.JSON(http.StatusOK, dto.ResearchResponse{
		ResearchID: id,
		Report:     &report,
	})
}
