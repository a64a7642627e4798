package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/metrics"
)

// ShipmentHandler handles HTTP requests for shipments
type ShipmentHandler struct {
	db     *database.DB
	logger *slog.Logger
}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler(db *database.DB, logger *slog.Logger) *ShipmentHandler {
	return &ShipmentHandler{db: db, logger: logger}
}

// CreateShipmentRequest is the body of POST /api/shipments
type CreateShipmentRequest struct {
	SiteID       string `json:"siteId" validate:"required"`
	HandlerCount int64  `json:"handlerCount" validate:"required,gt=0"`
	ShipmentDate string `json:"shipmentDate" validate:"required,datetime=2006-01-02"`
}

// ShipmentList wraps shipment listings
type ShipmentList struct {
	Data []database.Shipment `json:"data"`
}

// GetShipments handles GET /api/shipments
func (h *ShipmentHandler) GetShipments(w http.ResponseWriter, r *http.Request) {
	shipments, err := h.db.Shipments.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list shipments", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get shipments")
		return
	}

	writeJSON(w, http.StatusOK, ShipmentList{Data: shipments})
}

// GetSiteShipments handles GET /api/sites/{id}/shipments
func (h *ShipmentHandler) GetSiteShipments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.db.Sites.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("Failed to get site", "site_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get shipments")
		return
	}

	shipments, err := h.db.Shipments.ListBySite(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list site shipments", "site_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get shipments")
		return
	}

	writeJSON(w, http.StatusOK, ShipmentList{Data: shipments})
}

// CreateShipment handles POST /api/shipments
func (h *ShipmentHandler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var req CreateShipmentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := database.ParseDate(req.ShipmentDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	shipment := &database.Shipment{
		SiteID:       req.SiteID,
		HandlerCount: req.HandlerCount,
		ShipmentDate: date,
	}
	if err := h.db.Shipments.Create(r.Context(), shipment); err != nil {
		if errors.Is(err, database.ErrSiteNotFound) {
			writeError(w, http.StatusNotFound, "Site not found")
			return
		}
		h.logger.Error("Failed to create shipment", "site_id", req.SiteID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create shipment")
		return
	}

	metrics.ShipmentsCreatedTotal.Inc()
	metrics.HandlersDispatchedTotal.Add(float64(shipment.HandlerCount))
	h.logger.Info("Shipment recorded",
		"shipment_id", shipment.ID,
		"site_id", shipment.SiteID,
		"handlers", shipment.HandlerCount,
		"date", shipment.ShipmentDate.String())

	writeJSON(w, http.StatusCreated, shipment)
}

// DeleteShipment handles DELETE /api/shipments/{id}
func (h *ShipmentHandler) DeleteShipment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.db.Shipments.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Shipment not found")
			return
		}
		h.logger.Error("Failed to delete shipment", "shipment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete shipment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
