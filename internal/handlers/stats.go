package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/solver492/manu-pro/internal/services"
	"github.com/solver492/manu-pro/internal/stats"
)

// StatsHandler serves the aggregated statistics
type StatsHandler struct {
	stats  *services.StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a new statistics handler
func NewStatsHandler(statsService *services.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: statsService, logger: logger}
}

// GetDashboard handles GET /api/stats/dashboard
func (h *StatsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.stats.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute dashboard statistics", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get dashboard statistics")
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// GetDetailed handles GET /api/stats/detailed
func (h *StatsHandler) GetDetailed(w http.ResponseWriter, r *http.Request) {
	detailed, err := h.stats.Detailed(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute detailed statistics", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get detailed statistics")
		return
	}

	writeJSON(w, http.StatusOK, detailed)
}

// ExportDetailed handles GET /api/stats/detailed/export
func (h *StatsHandler) ExportDetailed(w http.ResponseWriter, r *http.Request) {
	detailed, err := h.stats.Detailed(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute detailed statistics", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export statistics")
		return
	}

	var buf bytes.Buffer
	if err := stats.WriteCSV(&buf, detailed.SiteStats); err != nil {
		h.logger.Error("Failed to write CSV export", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export statistics")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+stats.CSVFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
