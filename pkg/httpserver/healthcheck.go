package httpserver

import (
	"context"
	"log/slog"
	"net/http"
)

// Check tests one dependency.
type Check func(context.Context) error

// LivenessHandler always answers 200 ALIVE.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	}
}

// ReadinessHandler runs every named check with the request context and
// answers 503 NOT_READY when any fails.
func ReadinessHandler(log *slog.Logger, checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				if log != nil {
					log.WarnContext(r.Context(), "readiness check failed",
						slog.String("check", name), slog.Any("error", err))
				}
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
