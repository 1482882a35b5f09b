package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/carenavigator/backend/internal/domain/providers"
	"github.com/zatekoja/carenavigator/backend/internal/infrastructure/observability"
)

// RateLimitMiddleware allows limit requests per client IP per window for the wrapped route.
// A nil store or non-positive limit disables limiting. Store failures let requests through.
func RateLimitMiddleware(store providers.CounterStore, route string, limit int, window time.Duration, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + route + ":" + clientIP(r)
			count, err := store.Increment(r.Context(), key, window)
			if err != nil {
				observability.LoggerFromContext(r.Context()).Warn().Err(err).Str("route", route).Msg("rate limit store unavailable")
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(limit) {
				observability.RecordRateLimited(r.Context(), metrics, route)
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"detail":"rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
