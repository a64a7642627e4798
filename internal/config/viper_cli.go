package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/solver492/manu-pro/internal/cli"
)

// LoadCLIConfigWithViper loads CLI configuration using Viper
func LoadCLIConfigWithViper(v *viper.Viper) (*cli.Config, error) {
	setCLIDefaults(v)
	setupCLIEnvBinding(v)

	if err := loadCLIConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &cli.Config{}
	if err := unmarshalCLIConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setCLIDefaults sets default values for CLI configuration
func setCLIDefaults(v *viper.Viper) {
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("format", "table")
	v.SetDefault("quiet", false)
	v.SetDefault("no_color", false)
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("db_path", "")
}

// setupCLIEnvBinding sets up environment variable binding for CLI configuration
func setupCLIEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	envBindings := map[string]string{
		"server_url":      "CLI_SERVER_URL",
		"format":          "CLI_FORMAT",
		"quiet":           "CLI_QUIET",
		"request_timeout": "CLI_TIMEOUT",
		"db_path":         "CLI_DB_PATH",
	}
	for configKey, envSuffix := range envBindings {
		v.BindEnv(configKey, EnvPrefix+"_"+envSuffix)
	}

	// NO_COLOR is honored as the cross-tool convention
	v.BindEnv("no_color", EnvPrefix+"_CLI_NO_COLOR", "NO_COLOR")
}

// loadCLIConfigFile loads configuration file if it exists
func loadCLIConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.manu-pro")
		v.SetConfigName("cli")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return nil
}

// unmarshalCLIConfig unmarshals Viper configuration into CLI Config struct
func unmarshalCLIConfig(v *viper.Viper, config *cli.Config) error {
	config.ServerURL = v.GetString("server_url")
	config.Format = v.GetString("format")
	config.Quiet = v.GetBool("quiet")
	config.NoColor = v.GetBool("no_color")
	config.DBPath = v.GetString("db_path")

	timeout, err := parseTimeout(v.GetString("request_timeout"))
	if err != nil {
		return err
	}
	config.RequestTimeout = timeout

	return nil
}

// parseTimeout accepts a Go duration or a bare number of seconds
func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return 30 * time.Second, nil
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid request timeout: %s", value)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("request timeout must be positive, got %d seconds", seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

// LoadCLIConfig loads CLI configuration using default Viper instance
func LoadCLIConfig() (*cli.Config, error) {
	return LoadCLIConfigWithViper(viper.New())
}

// LoadCLIConfigWithFile loads CLI configuration from a specific file
func LoadCLIConfigWithFile(configFile string) (*cli.Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadCLIConfigWithViper(v)
}
