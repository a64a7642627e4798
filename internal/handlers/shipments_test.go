package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solver492/manu-pro/internal/database"
)

type shipmentJSON struct {
	ID           string `json:"id"`
	SiteID       string `json:"site_id"`
	HandlerCount int64  `json:"handler_count"`
	ShipmentDate string `json:"shipment_date"`
	CostTotal    int64  `json:"cost_total"`
}

func TestCreateShipment(t *testing.T) {
	env := setupTestEnv(t)
	site := env.createSite(t, "Atlas")

	t.Run("records shipment with derived cost", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/shipments", CreateShipmentRequest{
			SiteID: site.ID, HandlerCount: 4, ShipmentDate: "2025-02-10",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		got := decodeBody[shipmentJSON](t, w)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, site.ID, got.SiteID)
		assert.Equal(t, int64(4), got.HandlerCount)
		assert.Equal(t, "2025-02-10", got.ShipmentDate)
		assert.Equal(t, int64(600), got.CostTotal)
	})

	t.Run("unknown site", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/shipments", CreateShipmentRequest{
			SiteID: "missing", HandlerCount: 1, ShipmentDate: "2025-02-10",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Site not found", errorMessage(t, w))
	})

	tests := []struct {
		name    string
		body    any
		wantErr string
	}{
		{"zero handlers", CreateShipmentRequest{SiteID: site.ID, HandlerCount: 0, ShipmentDate: "2025-02-10"}, "handlerCount is required"},
		{"negative handlers", CreateShipmentRequest{SiteID: site.ID, HandlerCount: -2, ShipmentDate: "2025-02-10"}, "handlerCount must be greater than 0"},
		{"bad date", CreateShipmentRequest{SiteID: site.ID, HandlerCount: 1, ShipmentDate: "10/02/2025"}, "shipmentDate must be a date formatted YYYY-MM-DD"},
		{"missing site", CreateShipmentRequest{HandlerCount: 1, ShipmentDate: "2025-02-10"}, "siteId is required"},
		{"malformed json", `not json`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/shipments", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, errorMessage(t, w), tt.wantErr)
		})
	}
}

func TestListShipments(t *testing.T) {
	env := setupTestEnv(t)
	a := env.createSite(t, "A")
	b := env.createSite(t, "B")
	older := env.createShipment(t, a.ID, 1, database.NewDate(2025, 1, 3))
	newer := env.createShipment(t, b.ID, 2, database.NewDate(2025, 2, 3))
	middle := env.createShipment(t, a.ID, 3, database.NewDate(2025, 1, 20))

	t.Run("all shipments newest first", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/shipments", nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decodeBody[struct {
			Data []shipmentJSON `json:"data"`
		}](t, w)
		require.Len(t, list.Data, 3)
		assert.Equal(t, newer.ID, list.Data[0].ID)
		assert.Equal(t, middle.ID, list.Data[1].ID)
		assert.Equal(t, older.ID, list.Data[2].ID)
	})

	t.Run("per site", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/sites/"+a.ID+"/shipments", nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decodeBody[struct {
			Data []shipmentJSON `json:"data"`
		}](t, w)
		require.Len(t, list.Data, 2)
		assert.Equal(t, middle.ID, list.Data[0].ID)
		assert.Equal(t, older.ID, list.Data[1].ID)
	})

	t.Run("per unknown site", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/sites/missing/shipments", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteShipment(t *testing.T) {
	env := setupTestEnv(t)
	site := env.createSite(t, "Atlas")
	shipment := env.createShipment(t, site.ID, 2, database.NewDate(2025, 2, 1))

	w := env.do(t, http.MethodDelete, "/api/shipments/"+shipment.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/api/shipments/"+shipment.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Shipment not found", errorMessage(t, w))
}
