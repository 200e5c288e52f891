package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/inquiro/pkg/errtrack"
	"github.com/soundprediction/inquiro/pkg/server/dto"
	"github.com/soundprediction/inquiro/pkg/storage"
	"github.com/soundprediction/inquiro/pkg/types"
)

// Synthesizer drafts a prose answer from a stored research report.
type Synthesizer interface {
	Synthesize(ctx context.Context, researchID string, report *types.ResearchReport) (*types.Synthesis, error)
}

// SynthesizeHandler handles synthesis requests.
type SynthesizeHandler struct {
	synthesizer Synthesizer
	store       storage.Store
	logger      *slog.Logger
}

// NewSynthesizeHandler creates a synthesis handler. A nil synthesizer means
// the feature is not configured and requests are rejected with 503.
func NewSynthesizeHandler(synthesizer Synthesizer, store storage.Store, logger *slog.Logger) *SynthesizeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SynthesizeHandler{
		synthesizer: synthesizer,
		store:       store,
		logger:      logger,
	}
}

// Synthesize handles POST /api/synthesize.
func (h *SynthesizeHandler) Synthesize(c *gin.Context) {
	if h.synthesizer == nil || h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "synthesis is not configured",
		})
		return
	}

	var req dto.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ResearchID == "" {
		verr := errtrack.NewValidationError(map[string]string{
			"research_id": "research_id is required",
		})
		c.JSON(http.StatusBadRequest, errtrack.FormatError(verr))
		return
	}

	var report types.ResearchReport
	found, err := h.store.Get(c.Request.Context(), storage.KindReport, req.ResearchID, &report)
	if errors.Is(err, storage.ErrInvalidID) {
		verr := errtrack.NewValidationError(map[string]string{"research_id": "Research ID contains invalid characters"})
		c.JSON(http.StatusBadRequest, errtrack.FormatError(verr))
		return
	}
	if err != nil {
		h.logger.Error("failed to load research report", "research_id", req.ResearchID, "error", err)
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

	synthesis, err := h.synthesizer.Synthesize(c.Request.Context(), req.ResearchID, &report)
	if err != nil {
		h.logger.Error("synthesis failed", "research_id", req.ResearchID, "error", err)
		c.JSON(http.StatusInternalServerError, errtrack.FormatError(err))
		return
	}

	if err := h.store.Save(c.Request.Context(), storage.KindSynthesis, req.ResearchID, synthesis); err != nil {
		h.logger.Error("failed to persist synthesis", "research_id", req.ResearchID, "error", err)
	}

	c.JSON(http.StatusOK, synthesis)
}
