package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/solver492/manu-pro/internal/database"
)

// healthTimeout bounds the database ping of a health check
const healthTimeout = 2 * time.Second

// Pinger reports whether the store answers
type Pinger interface {
	IsHealthy(ctx context.Context) error
}

var _ Pinger = (*database.DB)(nil)

// HealthHandler handles health check requests
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message"`
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.IsHealthy(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "error",
			Message:  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Database: "ok",
		Message:  "Serveur backend fonctionnel",
	})
}
