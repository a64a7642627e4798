package cli

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Config holds CLI configuration
type Config struct {
	ServerURL      string
	Format         string
	Quiet          bool
	NoColor        bool
	RequestTimeout time.Duration
	// DBPath switches read commands to a local database instead of the server
	DBPath string
}

var validFormats = []string{"table", "json"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      "http://localhost:8080",
		Format:         "table",
		RequestTimeout: 30 * time.Second,
	}
}

// Offline reports whether commands read the database directly
func (c *Config) Offline() bool {
	return c.DBPath != ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("server URL cannot be empty")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL format: %s", c.ServerURL)
	}

	if !slices.Contains(validFormats, c.Format) {
		return fmt.Errorf("invalid format: %s (must be one of: table, json)", c.Format)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	return nil
}
