package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/solver492/manu-pro/internal/auth"
	"github.com/solver492/manu-pro/internal/clock"
	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/ratelimit"
	"github.com/solver492/manu-pro/internal/services"
	"github.com/solver492/manu-pro/internal/stats"
)

// testEnv wires every handler around an in-memory database with the
// clock pinned to 14 February 2025.
type testEnv struct {
	db     *database.DB
	engine *stats.Engine
	router chi.Router
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := stats.New(clock.At(2025, time.February, 14))
	statsService := services.NewStatsService(db, engine, logger)

	sites := NewSiteHandler(db, statsService, logger)
	shipments := NewShipmentHandler(db, logger)
	limiter := ratelimit.NewLoginLimiter(clock.At(2025, time.February, 14), ratelimit.Config{MaxFailures: 3, Lockout: 15 * time.Minute})
	login := NewAuthHandler(auth.NewAuthenticator(db.Users), limiter, logger)
	statistics := NewStatsHandler(statsService, logger)
	report := NewReportHandler(statsService, logger)
	health := NewHealthHandler(db)

	r := chi.NewRouter()
	r.Get("/api/health", health.HealthCheck)
	r.Get("/api/sites", sites.GetSites)
	r.Post("/api/sites", sites.CreateSite)
	r.Get("/api/sites/{id}", sites.GetSite)
	r.Put("/api/sites/{id}", sites.UpdateSite)
	r.Delete("/api/sites/{id}", sites.DeleteSite)
	r.Post("/api/sites/{id}/status", sites.UpdateSiteStatus)
	r.Get("/api/sites/{id}/shipments", shipments.GetSiteShipments)
	r.Get("/api/shipments", shipments.GetShipments)
	r.Post("/api/shipments", shipments.CreateShipment)
	r.Delete("/api/shipments/{id}", shipments.DeleteShipment)
	r.Post("/api/login", login.Login)
	r.Get("/api/stats/dashboard", statistics.GetDashboard)
	r.Get("/api/stats/detailed", statistics.GetDetailed)
	r.Get("/api/stats/detailed/export", statistics.ExportDetailed)
	r.Get("/reports/statistics", report.Statistics)

	return &testEnv{db: db, engine: engine, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createSite(t *testing.T, name string) *database.Site {
	t.Helper()
	site := &database.Site{Name: name}
	require.NoError(t, e.db.Sites.Create(context.Background(), site))
	return site
}

func (e *testEnv) createShipment(t *testing.T, siteID string, count int64, date database.Date) *database.Shipment {
	t.Helper()
	shipment := &database.Shipment{SiteID: siteID, HandlerCount: count, ShipmentDate: date}
	require.NoError(t, e.db.Shipments.Create(context.Background(), shipment))
	return shipment
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[ErrorResponse](t, w).Error
}
