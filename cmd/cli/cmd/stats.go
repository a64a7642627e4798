package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cliapi "github.com/solver492/manu-pro/internal/cli"
	"github.com/solver492/manu-pro/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"statistics"},
	Short:   "Show handler statistics",
	Long: `Show monthly and yearly handler statistics.

All statistics commands read from the API server, or directly from a
local database when --db is given.`,
}

var statsDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show totals, the monthly chart and the top clients",
	Args:  cobra.NoArgs,
	RunE:  runStatsDashboard,
}

var statsDetailedCmd = &cobra.Command{
	Use:   "detailed",
	Short: "Show per-site statistics",
	Args:  cobra.NoArgs,
	RunE:  runStatsDetailed,
}

var statsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export per-site statistics as CSV",
	Long: `Export per-site statistics as a semicolon separated CSV file.

By default the file is written to the current directory. Use -o - to
write to standard output.`,
	Args: cobra.NoArgs,
	RunE: runStatsExport,
}

var statsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse per-site statistics interactively",
	Args:  cobra.NoArgs,
	RunE:  runStatsBrowse,
}

var exportOutput string

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsDashboardCmd, statsDetailedCmd, statsExportCmd, statsBrowseCmd)

	statsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default statistiques_sites_clients.csv, - for stdout)")
}

func runStatsDashboard(cmd *cobra.Command, args []string) error {
	cfg, formatter, source, closeSource, err := initializeStatsSource(cmd)
	if err != nil {
		return err
	}
	defer closeSource()

	var dashboard *stats.DashboardStats
	err = withSpinner(cfg, "Loading dashboard", func() error {
		dashboard, err = source.Dashboard(cmd.Context())
		return err
	})
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintDashboard(dashboard)
}

func runStatsDetailed(cmd *cobra.Command, args []string) error {
	cfg, formatter, source, closeSource, err := initializeStatsSource(cmd)
	if err != nil {
		return err
	}
	defer closeSource()

	var detailed *stats.DetailedStats
	err = withSpinner(cfg, "Loading statistics", func() error {
		detailed, err = source.Detailed(cmd.Context())
		return err
	})
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintDetailed(detailed)
}

// csvExporter is implemented by sources that produce the CSV themselves
type csvExporter interface {
	ExportCSV(ctx context.Context, w io.Writer) error
}

func runStatsExport(cmd *cobra.Command, args []string) error {
	cfg, formatter, source, closeSource, err := initializeStatsSource(cmd)
	if err != nil {
		return err
	}
	defer closeSource()

	target := exportOutput
	if target == "" {
		target = stats.CSVFilename
	}

	var out io.Writer = cmd.OutOrStdout()
	if target != "-" {
		file, err := os.Create(target)
		if err != nil {
			formatter.PrintError(err)
			return err
		}
		defer file.Close()
		out = file
	}

	err = withSpinner(cfg, "Exporting statistics", func() error {
		return exportCSV(cmd.Context(), source, out)
	})
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if target != "-" {
		formatter.PrintSuccess(fmt.Sprintf("Statistics exported to %s", target))
	}
	return nil
}

// exportCSV writes the per-site CSV, letting the server render it when the
// source can.
func exportCSV(ctx context.Context, source cliapi.StatsSource, w io.Writer) error {
	if exporter, ok := source.(csvExporter); ok {
		return exporter.ExportCSV(ctx, w)
	}
	detailed, err := source.Detailed(ctx)
	if err != nil {
		return err
	}
	return stats.WriteCSV(w, detailed.SiteStats)
}

func runStatsBrowse(cmd *cobra.Command, args []string) error {
	cfg, formatter, source, closeSource, err := initializeStatsSource(cmd)
	if err != nil {
		return err
	}
	defer closeSource()

	detailed, err := source.Detailed(cmd.Context())
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return runStatsBrowser(cmd.Context(), source, detailed, cfg.NoColor)
}

// withSpinner runs fn while a spinner is shown, unless output is quiet
func withSpinner(cfg *cliapi.Config, message string, fn func() error) error {
	if cfg.Quiet {
		return fn()
	}
	spinner := cliapi.NewProgressSpinner(message, cfg.NoColor)
	spinner.Start()
	err := fn()
	spinner.Stop()
	return err
}
