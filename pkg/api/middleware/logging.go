package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging creates middleware that logs HTTP requests with timing information.
// It uses the request ID from context if available.
func Logging(getRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			requestID := ""
			if getRequestID != nil {
				requestID = getRequestID(r)
			}

			slog.Info("http request",
				"request_id", requestID, "method", r.Method, "path", r.URL.Path,
				"duration", time.Since(start))
		})
	}
}
