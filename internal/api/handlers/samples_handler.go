package handlers

import (
	"net/http"

	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

// SampleSource lists demo transcripts.
type SampleSource interface {
	List() []entities.SampleTranscript
}

// SamplesHandler serves the built-in sample transcripts.
type SamplesHandler struct {
	source SampleSource
}

// NewSamplesHandler creates a new samples handler.
func NewSamplesHandler(source SampleSource) *SamplesHandler {
	return &SamplesHandler{source: source}
}

// ListSamples handles GET /api/samples
func (h *SamplesHandler) ListSamples(w http.ResponseWriter, r *http.Request) {
	samples := h.source.List()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"samples": samples,
		"count":   len(samples),
	})
}
