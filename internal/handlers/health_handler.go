package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker probes the database and reports the applied schema version
type HealthChecker interface {
	HealthCheck(ctx context.Context) (string, error)
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	SchemaVersion string `json:"schema_version,omitempty"`
	Version       string `json:"version,omitempty"`
}

// HealthHandler reports service health
type HealthHandler struct {
	db      HealthChecker
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health reports whether the database is reachable
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	schema, err := h.db.HealthCheck(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Health check failed", "error", err)
		respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Database: "error"})
		return
	}
	respondWithJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Database:      "ok",
		SchemaVersion: schema,
		Version:       h.version,
	})
}
