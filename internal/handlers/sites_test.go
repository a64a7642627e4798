package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solver492/manu-pro/internal/database"
)

func TestCreateSite(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("valid site defaults to active", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sites", SiteRequest{Name: "  Atlas Logistique ", Address: "Casablanca"})
		require.Equal(t, http.StatusCreated, w.Code)

		site := decodeBody[database.Site](t, w)
		assert.NotEmpty(t, site.ID)
		assert.Equal(t, "Atlas Logistique", site.Name)
		assert.Equal(t, database.StatusActive, site.Status)
	})

	tests := []struct {
		name    string
		body    any
		wantErr string
	}{
		{"missing name", SiteRequest{Address: "Rabat"}, "name is required"},
		{"blank name", SiteRequest{Name: "   "}, "name is required"},
		{"french status", map[string]string{"name": "X", "status": "actif"}, "status must be one of: active, inactive"},
		{"malformed json", `{"name":`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/sites", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, errorMessage(t, w), tt.wantErr)
		})
	}
}

func TestGetSites(t *testing.T) {
	env := setupTestEnv(t)
	first := env.createSite(t, "Premier")
	second := env.createSite(t, "Second")
	w := env.do(t, http.MethodPost, "/api/sites/"+second.ID+"/status", StatusRequest{Status: "inactive"})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("all sites in insertion order", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/sites", nil)
		require.Equal(t, http.StatusOK, w.Code)
		sites := decodeBody[[]database.Site](t, w)
		require.Len(t, sites, 2)
		assert.Equal(t, first.ID, sites[0].ID)
		assert.Equal(t, second.ID, sites[1].ID)
	})

	t.Run("filtered by status", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/sites?status=inactive", nil)
		require.Equal(t, http.StatusOK, w.Code)
		sites := decodeBody[[]database.Site](t, w)
		require.Len(t, sites, 1)
		assert.Equal(t, second.ID, sites[0].ID)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/sites?status=inactif", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		env := setupTestEnv(t)
		w := env.do(t, http.MethodGet, "/api/sites", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestGetSiteDetail(t *testing.T) {
	env := setupTestEnv(t)
	site := env.createSite(t, "Atlas")
	env.createShipment(t, site.ID, 3, database.NewDate(2025, 2, 5))
	env.createShipment(t, site.ID, 4, database.NewDate(2025, 2, 14))
	env.createShipment(t, site.ID, 8, database.NewDate(2025, 1, 10))

	w := env.do(t, http.MethodGet, "/api/sites/"+site.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	detail := decodeBody[SiteDetailResponse](t, w)
	assert.Equal(t, site.ID, detail.Site.ID)
	assert.Equal(t, int64(4), detail.Stats.HandlersToday)
	assert.Equal(t, int64(7), detail.Stats.HandlersMonth)
	assert.Equal(t, int64(15*150), detail.Stats.TotalCost)
	require.Len(t, detail.Stats.MonthlyHistory, 6)
	assert.Equal(t, int64(7), detail.Stats.MonthlyHistory[0].Count)
	assert.Equal(t, int64(8), detail.Stats.MonthlyHistory[1].Count)

	t.Run("unknown site", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/sites/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Site not found", errorMessage(t, w))
	})
}

func TestUpdateSite(t *testing.T) {
	env := setupTestEnv(t)
	site := env.createSite(t, "Ancien nom")

	w := env.do(t, http.MethodPut, "/api/sites/"+site.ID, SiteRequest{Name: "Nouveau nom", Address: "Tanger", Status: "inactive"})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := env.db.Sites.GetByID(t.Context(), site.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nouveau nom", stored.Name)
	assert.Equal(t, "Tanger", stored.Address)
	assert.Equal(t, database.StatusInactive, stored.Status)

	t.Run("unknown site", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/sites/missing", SiteRequest{Name: "X"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateSiteStatus(t *testing.T) {
	env := setupTestEnv(t)
	site := env.createSite(t, "Atlas")

	w := env.do(t, http.MethodPost, "/api/sites/"+site.ID+"/status", StatusRequest{Status: "inactive"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[StatusResponse](t, w)
	assert.True(t, resp.Success)

	w = env.do(t, http.MethodPost, "/api/sites/"+site.ID+"/status", StatusRequest{Status: "inactif"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/sites/missing/status", StatusRequest{Status: "active"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSiteCascades(t *testing.T) {
	env := setupTestEnv(t)
	gone := env.createSite(t, "Supprimé")
	kept := env.createSite(t, "Conservé")
	env.createShipment(t, gone.ID, 5, database.NewDate(2025, 2, 1))
	env.createShipment(t, kept.ID, 2, database.NewDate(2025, 2, 1))

	w := env.do(t, http.MethodDelete, "/api/sites/"+gone.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	shipments, err := env.db.Shipments.List(t.Context())
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Equal(t, kept.ID, shipments[0].SiteID)

	w = env.do(t, http.MethodDelete, "/api/sites/"+gone.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
