package routes

import (
	"net/http"
	"time"

	"github.com/zatekoja/carenavigator/backend/internal/api/handlers"
	"github.com/zatekoja/carenavigator/backend/internal/api/middleware"
	"github.com/zatekoja/carenavigator/backend/internal/domain/providers"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
)

const rateLimitWindow = time.Minute

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	analyzeHandler    *handlers.AnalyzeHandler
	transcribeHandler *handlers.TranscribeHandler
	samplesHandler    *handlers.SamplesHandler

	counters        providers.CounterStore
	rateLimitPerMin int
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// Options holds cross-cutting router settings
type Options struct {
	Counters          providers.CounterStore
	RequestsPerMinute int
	AllowedOrigins    []string
	Metrics           *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	analyzeHandler *handlers.AnalyzeHandler,
	transcribeHandler *handlers.TranscribeHandler,
	samplesHandler *handlers.SamplesHandler,
	opts Options,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		analyzeHandler:    analyzeHandler,
		transcribeHandler: transcribeHandler,
		samplesHandler:    samplesHandler,
		counters:          opts.Counters,
		rateLimitPerMin:   opts.RequestsPerMinute,
		allowedOrigins:    opts.AllowedOrigins,
		metrics:           opts.Metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health endpoints; the root one is kept for platform health checks
	r.mux.HandleFunc("GET /health", handlers.Health)
	r.mux.HandleFunc("GET /api/health", handlers.Health)

	analyze := r.limited("analyze", http.HandlerFunc(r.analyzeHandler.Analyze))
	r.mux.Handle("POST /analyze", analyze)
	r.mux.Handle("POST /api/analyze", analyze)

	if r.transcribeHandler != nil {
		r.mux.Handle("POST /api/transcribe", r.limited("transcribe", http.HandlerFunc(r.transcribeHandler.Transcribe)))
	}

	if r.samplesHandler != nil {
		r.mux.HandleFunc("GET /api/samples", r.samplesHandler.ListSamples)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so preflights never reach the limiter
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

func (r *Router) limited(route string, h http.Handler) http.Handler {
	return middleware.RateLimitMiddleware(r.counters, route, r.rateLimitPerMin, rateLimitWindow, r.metrics)(h)
}
