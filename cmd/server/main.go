// Copyright 2024 Manu Pro
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/solver492/manu-pro/internal/auth"
	"github.com/solver492/manu-pro/internal/clock"
	"github.com/solver492/manu-pro/internal/config"
	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/logging"
	"github.com/solver492/manu-pro/internal/ratelimit"
	"github.com/solver492/manu-pro/internal/server"
	"github.com/solver492/manu-pro/internal/services"
	"github.com/solver492/manu-pro/internal/stats"
)

const (
	// Version information
	Version   = "1.0.0"
	BuildDate = "development"

	// Application name
	AppName = "manu-pro-server"
)

var (
	configFile string
	envFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           AppName,
		Short:         "Manu Pro API server",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Config file (default ./config.yaml, ./config/config.yaml or $HOME/.manu-pro/config.yaml)")
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "Environment file loaded before configuration (default .env)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadServerConfigWithEnvFile(envFile, configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logCloser.Close()

	logger.Info("Starting server",
		"version", Version,
		"build_date", BuildDate,
		"address", cfg.Address())

	// Initialize database
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open database", "path", cfg.DBPath, "error", err)
		return err
	}
	defer db.Close()

	logger.Info("Database initialized", "path", cfg.DBPath)

	authenticator := auth.NewAuthenticator(db.Users)
	if cfg.HasBootstrapUser() {
		if err := bootstrapUser(cmd.Context(), authenticator, cfg, logger); err != nil {
			return err
		}
	}

	limiter := ratelimit.NewLoginLimiter(clock.SystemClock{}, ratelimit.Config{
		MaxFailures: cfg.LoginMaxFailures,
		Lockout:     cfg.LoginLockout,
	})

	engine := stats.New(clock.SystemClock{})
	handler := server.NewRouter(server.Deps{
		DB:            db,
		Stats:         services.NewStatsService(db, engine, logger),
		Authenticator: authenticator,
		LoginLimiter:  limiter,
		Logger:        logger,
		WebDir:        cfg.WebDir,
	})

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: handler,

		// Timeouts
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Handle server startup and graceful shutdown
	if err := server.HandleSignals(srv, cfg.ShutdownTimeout, logger); err != nil {
		logger.Error("Server error", "error", err)
		return err
	}
	return nil
}

// bootstrapUser creates the configured account on first start
func bootstrapUser(ctx context.Context, authenticator *auth.Authenticator, cfg *config.Config, logger *slog.Logger) error {
	created, err := authenticator.EnsureUser(ctx, cfg.BootstrapEmail, cfg.BootstrapPassword, "Administrateur")
	if err != nil {
		logger.Error("Failed to create bootstrap user", "email", cfg.BootstrapEmail, "error", err)
		return err
	}
	if created {
		logger.Info("Bootstrap user created", "email", cfg.BootstrapEmail)
	} else {
		logger.Debug("Bootstrap user already exists", "email", cfg.BootstrapEmail)
	}
	return nil
}
