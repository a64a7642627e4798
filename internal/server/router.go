package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solver492/manu-pro/internal/auth"
	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/handlers"
	"github.com/solver492/manu-pro/internal/ratelimit"
	"github.com/solver492/manu-pro/internal/services"
)

// Deps are the collaborators the HTTP surface is built from
type Deps struct {
	DB            *database.DB
	Stats         *services.StatsService
	Authenticator *auth.Authenticator
	Logger        *slog.Logger

	// LoginLimiter may be nil to disable login lockout
	LoginLimiter *ratelimit.LoginLimiter

	// WebDir holds the built dashboard served for every non-API path
	WebDir string
}

// HandlerWrappers groups the HTTP handlers behind the router
type HandlerWrappers struct {
	siteHandler     *handlers.SiteHandler
	shipmentHandler *handlers.ShipmentHandler
	authHandler     *handlers.AuthHandler
	statsHandler    *handlers.StatsHandler
	reportHandler   *handlers.ReportHandler
	healthHandler   *handlers.HealthHandler
	staticHandler   *handlers.StaticHandler
}

// NewHandlerWrappers creates the handlers from deps
func NewHandlerWrappers(deps Deps) *HandlerWrappers {
	return &HandlerWrappers{
		siteHandler:     handlers.NewSiteHandler(deps.DB, deps.Stats, deps.Logger),
		shipmentHandler: handlers.NewShipmentHandler(deps.DB, deps.Logger),
		authHandler:     handlers.NewAuthHandler(deps.Authenticator, deps.LoginLimiter, deps.Logger),
		statsHandler:    handlers.NewStatsHandler(deps.Stats, deps.Logger),
		reportHandler:   handlers.NewReportHandler(deps.Stats, deps.Logger),
		healthHandler:   handlers.NewHealthHandler(deps.DB),
		staticHandler:   handlers.NewStaticHandler(deps.WebDir),
	}
}

// RegisterRoutes registers all routes with a chi router
func (hw *HandlerWrappers) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", hw.healthHandler.HealthCheck)
		r.Post("/login", hw.authHandler.Login)

		r.Route("/sites", func(r chi.Router) {
			r.Get("/", hw.siteHandler.GetSites)
			r.Post("/", hw.siteHandler.CreateSite)
			r.Get("/{id}", hw.siteHandler.GetSite)
			r.Put("/{id}", hw.siteHandler.UpdateSite)
			r.Delete("/{id}", hw.siteHandler.DeleteSite)
			r.Post("/{id}/status", hw.siteHandler.UpdateSiteStatus)
			r.Get("/{id}/shipments", hw.shipmentHandler.GetSiteShipments)
		})

		r.Get("/shipments", hw.shipmentHandler.GetShipments)
		r.Post("/shipments", hw.shipmentHandler.CreateShipment)
		r.Delete("/shipments/{id}", hw.shipmentHandler.DeleteShipment)

		r.Get("/stats/dashboard", hw.statsHandler.GetDashboard)
		r.Get("/stats/detailed", hw.statsHandler.GetDetailed)
		r.Get("/stats/detailed/export", hw.statsHandler.ExportDetailed)
	})

	r.Get("/reports/statistics", hw.reportHandler.Statistics)
	r.Handle("/metrics", promhttp.Handler())

	// Static file routes (catch-all for SPA)
	r.Get("/*", hw.staticHandler.ServeHTTP)
}

// NewRouter builds the complete HTTP handler with its middleware stack
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(deps.Logger))
	r.Use(RecoveryMiddleware(deps.Logger))
	r.Use(MetricsMiddleware)
	r.Use(CORSMiddleware)
	r.Use(ContentTypeMiddleware)
	r.Use(SecurityMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Not found"}` + "\n"))
	})

	NewHandlerWrappers(deps).RegisterRoutes(r)
	return r
}
