package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	storage HealthChecker
	driver  string
}

// NewHealthHandler creates a new HealthHandler.
// The storage check is reported under the driver name. Pass nil for storage
// if it is not yet initialized.
func NewHealthHandler(storage HealthChecker, driver string) *HealthHandler {
	if driver == "" {
		driver = "storage"
	}
	return &HealthHandler{
		storage: storage,
		driver:  driver,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint.
// It returns 200 if the server is running. No dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint.
// It pings the collection and returns 200 only if it answers.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.storage != nil {
		if err := h.storage.Ping(ctx); err != nil {
			checks[h.driver] = "error: " + err.Error()
			healthy = false
		} else {
			checks[h.driver] = "ok"
		}
	} else {
		checks[h.driver] = "not configured"
	}

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status: status,
		Checks: checks,
	})
}
