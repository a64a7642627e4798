package cli

import (
	"context"

	"github.com/solver492/manu-pro/internal/stats"
)

// StatsSource yields aggregated statistics. Both the API client and the
// local statistics service satisfy it.
type StatsSource interface {
	Dashboard(ctx context.Context) (*stats.DashboardStats, error)
	Detailed(ctx context.Context) (*stats.DetailedStats, error)
}

var _ StatsSource = (*Client)(nil)
