package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
	"golang.org/x/sync/semaphore"
)

const maxAnalyzeBodyBytes = 1 << 20

// AnalysisService defines the pipeline operations used by the handler.
type AnalysisService interface {
	Analyze(ctx context.Context, input entities.AnalysisInput) (*entities.AnalysisResponse, error)
	Configured() bool
}

// AnalyzeHandler runs transcripts through the analysis pipeline.
type AnalyzeHandler struct {
	service AnalysisService
	slots   *semaphore.Weighted
	timeout time.Duration
}

// NewAnalyzeHandler creates a handler that allows maxConcurrent runs at once.
// timeout bounds both the wait for a slot and the run itself.
func NewAnalyzeHandler(service AnalysisService, maxConcurrent int64, timeout time.Duration) *AnalyzeHandler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &AnalyzeHandler{
		service: service,
		slots:   semaphore.NewWeighted(maxConcurrent),
		timeout: timeout,
	}
}

type analyzeRequest struct {
	Transcript    *string                `json:"transcript"`
	CallerContext map[string]interface{} `json:"caller_context"`
	Channel       *string                `json:"channel"`
	Debug         *bool                  `json:"debug"`
}

type analyzeResult struct {
	resp *entities.AnalysisResponse
	err  error
}

// Analyze handles POST /analyze and POST /api/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyzeBodyBytes)).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	input, msg := payload.toInput()
	if msg != "" {
		respondWithError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	if !h.service.Configured() {
		respondWithError(w, http.StatusServiceUnavailable, "OPENAI_API_KEY is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	logger := observability.LoggerFromContext(r.Context())
	if err := h.slots.Acquire(ctx, 1); err != nil {
		logger.Warn().Err(err).Msg("no analysis slot available")
		respondWithError(w, http.StatusServiceUnavailable, "server is busy, try again later")
		return
	}

	// The run is detached from the request so a timeout or disconnect never stops a stage midway.
	done := make(chan analyzeResult, 1)
	go func() {
		defer h.slots.Release(1)
		defer func() {
			if rec := recover(); rec != nil {
				done <- analyzeResult{err: fmt.Errorf("analysis panicked: %v", rec)}
			}
		}()
		resp, err := h.service.Analyze(context.WithoutCancel(r.Context()), input)
		done <- analyzeResult{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.Warn().Dur("timeout", h.timeout).Msg("analysis exceeded request timeout")
		respondWithError(w, http.StatusGatewayTimeout, "analysis timed out")
	case result := <-done:
		if result.err != nil {
			if apperrors.IsType(result.err, apperrors.ErrorTypeConfiguration) {
				respondWithError(w, http.StatusServiceUnavailable, "OPENAI_API_KEY is not configured")
				return
			}
			logger.Error().Err(result.err).Msg("analysis failed")
			respondWithError(w, http.StatusInternalServerError, "analysis failed")
			return
		}
		w.Header().Set("X-Request-ID", result.resp.RequestID)
		respondWithJSON(w, http.StatusOK, result.resp)
	}
}

func (p analyzeRequest) toInput() (entities.AnalysisInput, string) {
	if p.Transcript == nil {
		return entities.AnalysisInput{}, "transcript is required"
	}
	input := entities.AnalysisInput{
		Transcript:    *p.Transcript,
		CallerContext: p.CallerContext,
	}
	if p.Channel != nil {
		input.Channel = entities.Channel(*p.Channel)
		if input.Channel == "" || !input.Channel.IsValid() {
			return entities.AnalysisInput{}, "channel must be one of: phone, chat"
		}
	}
	if p.Debug != nil {
		input.Debug = *p.Debug
	}
	return input, ""
}
