package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration

	// Database configuration
	DBPath string

	// Logging
	LogLevel string
	LogFile  string

	// Account created at startup when no user with that email exists
	BootstrapEmail    string
	BootstrapPassword string

	// Failed logins allowed per email before it is locked out; 0 disables
	LoginMaxFailures int
	LoginLockout     time.Duration

	// Built dashboard served for non-API paths
	WebDir string
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.ServerPort)
	}

	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	if c.LoginMaxFailures < 0 {
		return fmt.Errorf("auth.max_failures cannot be negative")
	}
	if c.LoginMaxFailures > 0 && c.LoginLockout <= 0 {
		return fmt.Errorf("auth.lockout must be positive")
	}

	// Either both bootstrap credentials or neither
	if (c.BootstrapEmail == "") != (c.BootstrapPassword == "") {
		return fmt.Errorf("auth.bootstrap_email and auth.bootstrap_password must be set together")
	}

	return nil
}

// Address returns the full server address
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// HasBootstrapUser reports whether an initial account is configured
func (c *Config) HasBootstrapUser() bool {
	return c.BootstrapEmail != ""
}

// LoadEnvFile loads variables from a .env file without overriding the
// environment. A missing file is not an error.
func LoadEnvFile(filename string) error {
	if err := godotenv.Load(filename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
