package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/carenavigator/backend/internal/adapters/cache"
	"github.com/zatekoja/carenavigator/backend/internal/api/handlers"
	"github.com/zatekoja/carenavigator/backend/internal/api/routes"
	"github.com/zatekoja/carenavigator/backend/internal/application/services"
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

type fakeAnalysis struct{}

func (fakeAnalysis) Configured() bool { return true }

func (fakeAnalysis) Analyze(ctx context.Context, input entities.AnalysisInput) (*entities.AnalysisResponse, error) {
	return &entities.AnalysisResponse{RequestID: "req-1", Warnings: []string{}, Errors: []string{}}, nil
}

func newTestServer(t *testing.T, limit int) http.Handler {
	t.Helper()
	counters, err := cache.NewRistrettoAdapter(100)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(counters.Close)

	router := routes.NewRouter(
		handlers.NewAnalyzeHandler(fakeAnalysis{}, 4, time.Second),
		handlers.NewTranscribeHandler(nil),
		handlers.NewSamplesHandler(services.NewSampleCatalog()),
		routes.Options{
			Counters:          counters,
			RequestsPerMinute: limit,
			AllowedOrigins:    []string{"http://localhost:8501"},
		},
	)
	return router.SetupRoutes()
}

func TestRouter_Endpoints(t *testing.T) {
	server := newTestServer(t, 10)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/samples", "", http.StatusOK},
		{http.MethodPost, "/analyze", `{"transcript":"hi"}`, http.StatusOK},
		{http.MethodPost, "/api/analyze", `{"transcript":"hi"}`, http.StatusOK},
		{http.MethodPost, "/api/transcribe", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/analyze", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRouter_AnalyzeIsRateLimited(t *testing.T) {
	server := newTestServer(t, 1)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"transcript":"hi"}`))
		req.RemoteAddr = "10.1.1.1:4000"
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRouter_AnalyzeResponseHeaders(t *testing.T) {
	server := newTestServer(t, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"transcript":"hi"}`))
	req.Header.Set("Origin", "http://localhost:8501")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "http://localhost:8501", w.Header().Get("Access-Control-Allow-Origin"))
}
