package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/subreminder/pkg/logger"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthCheckHandler reports {"status":"ok"} or 503 with the failing check names.
// With no checks it acts as a liveness probe.
func HealthCheckHandler(log *slog.Logger, checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		failed := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", slog.String("check", name), logger.Error(err))
				failed[name] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{"status": "ok"}
		if len(failed) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			body = map[string]any{"status": "unavailable", "checks": failed}
		}
		_ = json.NewEncoder(w).Encode(body)
	}
}
