package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/stats"
)

// StatsService loads ledger records and reduces them with the stats engine.
// The HTTP handlers and the CLI offline mode both go through it.
type StatsService struct {
	db     *database.DB
	engine *stats.Engine
	logger *slog.Logger
}

func NewStatsService(db *database.DB, engine *stats.Engine, logger *slog.Logger) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{db: db, engine: engine, logger: logger}
}

// Engine exposes the engine used for reductions
func (s *StatsService) Engine() *stats.Engine {
	return s.engine
}

// loadAll reads every site and every shipment concurrently
func (s *StatsService) loadAll(ctx context.Context) ([]database.Site, []database.Shipment, error) {
	var sites []database.Site
	var shipments []database.Shipment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sites, err = s.db.Sites.List(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		shipments, err = s.db.Shipments.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sites, shipments, nil
}

// Dashboard computes the global overview
func (s *StatsService) Dashboard(ctx context.Context) (*stats.DashboardStats, error) {
	start := time.Now()
	sites, shipments, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	result := s.engine.Dashboard(sites, shipments)
	s.logger.Debug("Computed dashboard statistics",
		"sites", len(sites),
		"shipments", len(shipments),
		"duration", time.Since(start))
	return &result, nil
}

// Detailed computes the per-site statistics table
func (s *StatsService) Detailed(ctx context.Context) (*stats.DetailedStats, error) {
	start := time.Now()
	sites, shipments, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	result := s.engine.Detailed(sites, shipments)
	s.logger.Debug("Computed detailed statistics",
		"sites", len(sites),
		"shipments", len(shipments),
		"duration", time.Since(start))
	return &result, nil
}

// SiteDetail returns the site and its statistics block. A missing site
// yields sql.ErrNoRows.
func (s *StatsService) SiteDetail(ctx context.Context, id string) (*database.Site, *stats.SiteDetailStats, error) {
	var site *database.Site
	var shipments []database.Shipment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		site, err = s.db.Sites.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		shipments, err = s.db.Shipments.ListBySite(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	detail := s.engine.SiteDetail(id, shipments)
	return site, &detail, nil
}
