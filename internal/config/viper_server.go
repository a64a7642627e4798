package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the server and CLI
const EnvPrefix = "MANU_PRO"

// LoadServerConfigWithViper loads server configuration using Viper
func LoadServerConfigWithViper(v *viper.Viper) (*Config, error) {
	setServerDefaults(v)
	setupServerEnvBinding(v)

	if err := loadConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &Config{}
	if err := unmarshalServerConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setServerDefaults sets default values for server configuration
func setServerDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("database.path", "./manu-pro.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetDefault("auth.bootstrap_email", "")
	v.SetDefault("auth.bootstrap_password", "")
	v.SetDefault("auth.max_failures", 5)
	v.SetDefault("auth.lockout", "15m")

	v.SetDefault("web.dir", "./web/dist")
}

// setupServerEnvBinding sets up environment variable binding for server configuration
func setupServerEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Unprefixed names are accepted after the prefixed one
	envBindings := map[string][]string{
		"server.port":             {"SERVER_PORT"},
		"server.host":             {"SERVER_HOST"},
		"server.shutdown_timeout": {"SERVER_SHUTDOWN_TIMEOUT"},
		"database.path":           {"DATABASE_PATH", "DB_PATH"},
		"logging.level":           {"LOGGING_LEVEL", "LOG_LEVEL"},
		"logging.file":            {"LOGGING_FILE"},
		"auth.bootstrap_email":    {"AUTH_BOOTSTRAP_EMAIL"},
		"auth.bootstrap_password": {"AUTH_BOOTSTRAP_PASSWORD"},
		"auth.max_failures":       {"AUTH_MAX_FAILURES"},
		"auth.lockout":            {"AUTH_LOCKOUT"},
		"web.dir":                 {"WEB_DIR"},
	}
	for configKey, names := range envBindings {
		v.BindEnv(append([]string{configKey, EnvPrefix + "_" + names[0]}, names...)...)
	}
}

// loadConfigFile loads configuration file if it exists
func loadConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.manu-pro")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return nil
}

// unmarshalServerConfig unmarshals Viper configuration into Config struct
func unmarshalServerConfig(v *viper.Viper, config *Config) error {
	config.ServerPort = v.GetString("server.port")
	config.ServerHost = v.GetString("server.host")
	config.DBPath = v.GetString("database.path")
	config.LogLevel = v.GetString("logging.level")
	config.LogFile = v.GetString("logging.file")
	config.BootstrapEmail = v.GetString("auth.bootstrap_email")
	config.BootstrapPassword = v.GetString("auth.bootstrap_password")
	config.WebDir = v.GetString("web.dir")

	var err error
	config.ShutdownTimeout, err = time.ParseDuration(v.GetString("server.shutdown_timeout"))
	if err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	config.LoginMaxFailures, err = strconv.Atoi(v.GetString("auth.max_failures"))
	if err != nil {
		return fmt.Errorf("invalid auth.max_failures: %w", err)
	}
	config.LoginLockout, err = time.ParseDuration(v.GetString("auth.lockout"))
	if err != nil {
		return fmt.Errorf("invalid auth.lockout: %w", err)
	}

	return nil
}

// LoadServerConfig loads server configuration using default Viper instance
func LoadServerConfig() (*Config, error) {
	return LoadServerConfigWithViper(viper.New())
}

// LoadServerConfigWithFile loads server configuration from a specific file
func LoadServerConfigWithFile(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadServerConfigWithViper(v)
}

// LoadServerConfigWithEnvFile loads envFile (or .env when empty) before
// reading the configuration
func LoadServerConfigWithEnvFile(envFile, configFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	if configFile != "" {
		return LoadServerConfigWithFile(configFile)
	}
	return LoadServerConfig()
}
