package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cliapi "github.com/solver492/manu-pro/internal/cli"
	"github.com/solver492/manu-pro/internal/clock"
	"github.com/solver492/manu-pro/internal/config"
	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/services"
	"github.com/solver492/manu-pro/internal/stats"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "manu-pro",
	Short: "CLI client for the Manu Pro handler dispatch dashboard",
	Long: `Manu Pro manages client sites and the handlers dispatched to them.
Record shipments, browse monthly and yearly statistics, export them
as CSV or print the statistics report to PDF.

Statistics commands can read a local database directly with --db.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Config file (default ./cli.yaml or $HOME/.manu-pro/cli.yaml)")
	flags.StringP("server", "s", "http://localhost:8080", "API server address")
	flags.StringP("format", "f", "table", "Output format (table, json)")
	flags.BoolP("quiet", "q", false, "Quiet mode (minimal output)")
	flags.Bool("no-color", false, "Disable color output")
	flags.String("db", "", "Read statistics from this SQLite database instead of the server")
}

// flagKeys maps persistent flags to CLI configuration keys
var flagKeys = map[string]string{
	"server":   "server_url",
	"format":   "format",
	"quiet":    "quiet",
	"no-color": "no_color",
	"db":       "db_path",
}

// loadConfig merges defaults, config file, environment and explicitly set flags
func loadConfig(cmd *cobra.Command) (*cliapi.Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			v.Set(key, flag.Value.String())
		}
	}
	return config.LoadCLIConfigWithViper(v)
}

// initializeClient sets up configuration, formatter, and API client
func initializeClient(cmd *cobra.Command) (*cliapi.Config, *cliapi.OutputFormatter, *cliapi.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	formatter := cliapi.NewOutputFormatter(cfg.Format, cfg.Quiet, cfg.NoColor)
	client := cliapi.NewClientWithTimeout(cfg.ServerURL, cfg.RequestTimeout)

	// Test connectivity
	if err := client.HealthCheck(cmd.Context()); err != nil {
		formatter.PrintError(err)
		return nil, nil, nil, err
	}

	return cfg, formatter, client, nil
}

// initializeStatsSource returns the server client, or the local statistics
// service when --db is set. The returned close func must always be called.
func initializeStatsSource(cmd *cobra.Command) (*cliapi.Config, *cliapi.OutputFormatter, cliapi.StatsSource, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if !cfg.Offline() {
		cfg, formatter, client, err := initializeClient(cmd)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return cfg, formatter, client, func() {}, nil
	}

	formatter := cliapi.NewOutputFormatter(cfg.Format, cfg.Quiet, cfg.NoColor)
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		formatter.PrintError(err)
		return nil, nil, nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := services.NewStatsService(db, stats.New(clock.SystemClock{}), logger)
	return cfg, formatter, source, func() { db.Close() }, nil
}
