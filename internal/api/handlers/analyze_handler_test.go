package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/carenavigator/backend/internal/api/handlers"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/carenavigator/backend/pkg/errors"
)

type stubAnalysisService struct {
	configured bool
	delay      time.Duration
	err        error
	panics     atomic.Bool
	inputs     chan entities.AnalysisInput
	finished   atomic.Int32
}

func (s *stubAnalysisService) Configured() bool { return s.configured }

func (s *stubAnalysisService) Analyze(ctx context.Context, input entities.AnalysisInput) (*entities.AnalysisResponse, error) {
	if s.inputs != nil {
		s.inputs <- input
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	defer s.finished.Add(1)
	if s.panics.Load() {
		panic("stage exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &entities.AnalysisResponse{
		RequestID: "req-123",
		Intent:    entities.IntentResult{Intent: entities.IntentRefill, Confidence: 0.9, Reason: "refill"},
		ModelUsed: "gpt-4o-mini",
		Warnings:  []string{},
		Errors:    []string{},
	}, nil
}

func postAnalyze(t *testing.T, h *handlers.AnalyzeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Analyze(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body["detail"]
}

func TestAnalyzeHandler_Success(t *testing.T) {
	service := &stubAnalysisService{configured: true, inputs: make(chan entities.AnalysisInput, 1)}
	h := handlers.NewAnalyzeHandler(service, 2, time.Second)

	w := postAnalyze(t, h, `{"transcript":"I need a refill","channel":"phone","debug":true,"caller_context":{"member_id":"XYZ123"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	input := <-service.inputs
	assert.Equal(t, "I need a refill", input.Transcript)
	assert.Equal(t, entities.ChannelPhone, input.Channel)
	assert.True(t, input.Debug)
	assert.Equal(t, "XYZ123", input.CallerContext["member_id"])

	var resp entities.AnalysisResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, entities.IntentRefill, resp.Intent.Intent)
}

func TestAnalyzeHandler_EmptyTranscriptAccepted(t *testing.T) {
	service := &stubAnalysisService{configured: true}
	h := handlers.NewAnalyzeHandler(service, 1, time.Second)

	w := postAnalyze(t, h, `{"transcript":""}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeHandler_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{name: "malformed JSON", body: `{"transcript":`, status: http.StatusBadRequest, detail: "invalid request payload"},
		{name: "missing transcript", body: `{"channel":"phone"}`, status: http.StatusUnprocessableEntity, detail: "transcript is required"},
		{name: "unknown channel", body: `{"transcript":"hi","channel":"fax"}`, status: http.StatusUnprocessableEntity, detail: "channel must be one of: phone, chat"},
		{name: "empty channel", body: `{"transcript":"hi","channel":""}`, status: http.StatusUnprocessableEntity, detail: "channel must be one of: phone, chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubAnalysisService{configured: true}
			h := handlers.NewAnalyzeHandler(service, 1, time.Second)

			w := postAnalyze(t, h, tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.detail, detail(t, w))
			assert.Equal(t, int32(0), service.finished.Load())
		})
	}
}

func TestAnalyzeHandler_NotConfigured(t *testing.T) {
	h := handlers.NewAnalyzeHandler(&stubAnalysisService{}, 1, time.Second)

	w := postAnalyze(t, h, `{"transcript":"hello"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "OPENAI_API_KEY is not configured", detail(t, w))
}

func TestAnalyzeHandler_ServiceErrors(t *testing.T) {
	t.Run("configuration", func(t *testing.T) {
		service := &stubAnalysisService{configured: true, err: apperrors.NewConfigurationError("OPENAI_API_KEY is not set")}
		w := postAnalyze(t, handlers.NewAnalyzeHandler(service, 1, time.Second), `{"transcript":"hello"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("unexpected", func(t *testing.T) {
		service := &stubAnalysisService{configured: true, err: errors.New("boom")}
		w := postAnalyze(t, handlers.NewAnalyzeHandler(service, 1, time.Second), `{"transcript":"hello"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAnalyzeHandler_TimeoutLetsRunFinish(t *testing.T) {
	service := &stubAnalysisService{configured: true, delay: 100 * time.Millisecond}
	h := handlers.NewAnalyzeHandler(service, 1, 10*time.Millisecond)

	w := postAnalyze(t, h, `{"transcript":"hello"}`)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Eventually(t, func() bool { return service.finished.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestAnalyzeHandler_BusyWhenNoSlot(t *testing.T) {
	service := &stubAnalysisService{configured: true, delay: 200 * time.Millisecond, inputs: make(chan entities.AnalysisInput, 2)}
	h := handlers.NewAnalyzeHandler(service, 1, 50*time.Millisecond)

	first := make(chan int, 1)
	go func() {
		first <- postAnalyze(t, h, `{"transcript":"first"}`).Code
	}()
	<-service.inputs

	w := postAnalyze(t, h, `{"transcript":"second"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "server is busy, try again later", detail(t, w))
	assert.Equal(t, http.StatusGatewayTimeout, <-first)
}

func TestAnalyzeHandler_PanicReturns500AndFreesSlot(t *testing.T) {
	service := &stubAnalysisService{configured: true}
	service.panics.Store(true)
	h := handlers.NewAnalyzeHandler(service, 1, time.Second)

	w := postAnalyze(t, h, `{"transcript":"I need a refill"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "analysis failed", detail(t, w))

	service.panics.Store(false)
	w = postAnalyze(t, h, `{"transcript":"I need a refill"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
