package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /health. It answers 503 when the store ping fails.
func Health(store Pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp := HealthResponse{Status: "ok", Checks: map[string]string{"store": "ok"}}
		status := http.StatusOK
		if err := store.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Checks["store"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
