package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/services"
	"github.com/solver492/manu-pro/internal/stats"
)

// SiteHandler handles HTTP requests for client sites
type SiteHandler struct {
	db     *database.DB
	stats  *services.StatsService
	logger *slog.Logger
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(db *database.DB, statsService *services.StatsService, logger *slog.Logger) *SiteHandler {
	return &SiteHandler{db: db, stats: statsService, logger: logger}
}

// SiteRequest is the body of site creation and update
type SiteRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=500"`
	Status  string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// StatusRequest is the body of POST /api/sites/{id}/status
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// StatusResponse acknowledges a status change
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SiteDetailResponse is the site page payload
type SiteDetailResponse struct {
	Site  *database.Site         `json:"site"`
	Stats *stats.SiteDetailStats `json:"stats"`
}

func (req *SiteRequest) site() *database.Site {
	return &database.Site{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Status:  database.SiteStatus(req.Status),
	}
}

func decodeSiteRequest(r *http.Request) (*SiteRequest, error) {
	var req SiteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	return &req, nil
}

// GetSites handles GET /api/sites
func (h *SiteHandler) GetSites(w http.ResponseWriter, r *http.Request) {
	status := database.SiteStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "status must be one of: active, inactive")
		return
	}

	sites, err := h.db.Sites.List(r.Context(), status)
	if err != nil {
		h.logger.Error("Failed to list sites", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get sites")
		return
	}

	writeJSON(w, http.StatusOK, sites)
}

// GetSite handles GET /api/sites/{id}
func (h *SiteHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	site, detail, err := h.stats.SiteDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("Failed to get site", "site_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get site")
		return
	}

	writeJSON(w, http.StatusOK, SiteDetailResponse{Site: site, Stats: detail})
}

// CreateSite handles POST /api/sites
func (h *SiteHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSiteRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	site := req.site()
	if err := h.db.Sites.Create(r.Context(), site); err != nil {
		h.logger.Error("Failed to create site", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create site")
		return
	}

	h.logger.Info("Site created", "site_id", site.ID, "name", site.Name)
	writeJSON(w, http.StatusCreated, site)
}

// UpdateSite handles PUT /api/sites/{id}
func (h *SiteHandler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := decodeSiteRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	site := req.site()
	if err := h.db.Sites.Update(r.Context(), id, site); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("Failed to update site", "site_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update site")
		return
	}

	writeJSON(w, http.StatusOK, site)
}

// UpdateSiteStatus handles POST /api/sites/{id}/status
func (h *SiteHandler) UpdateSiteStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req StatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.db.Sites.UpdateStatus(r.Context(), id, database.SiteStatus(req.Status)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("Failed to update site status", "site_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, StatusResponse{Success: false, Message: "Failed to update site status"})
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "Site status updated"})
}

// DeleteSite handles DELETE /api/sites/{id}
func (h *SiteHandler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.db.Sites.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("Failed to delete site", "site_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete site")
		return
	}

	h.logger.Info("Site deleted", "site_id", id)
	w.WriteHeader(http.StatusNoContent)
}
