package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

type healthStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func handleHealth(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := checker.Health(ctx); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, healthStatus{Status: "unhealthy", Error: err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthStatus{Status: "healthy"})
	}
}
