package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/mixwatch/filter"
	"github.com/s0up4200/mixwatch/growatt"
)

// EnvPrefix prefixes environment overrides, e.g. MIXWATCH_GROWATT_PASSWORD
const EnvPrefix = "MIXWATCH"

// Load loads the configuration from file and environment. A missing config file is
// not an error as long as the environment supplies the required values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".mixwatch"))
		}

		// Check /etc
		v.AddConfigPath("/etc/mixwatch/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Growatt defaults. Every key needs a default for AutomaticEnv to see it on Unmarshal.
	v.SetDefault("growatt.username", "")
	v.SetDefault("growatt.password", "")
	v.SetDefault("growatt.password_hashed", false)
	v.SetDefault("growatt.mix_serial", "")
	v.SetDefault("growatt.plant_id", "")
	v.SetDefault("growatt.server_url", growatt.DefaultBaseURL)
	v.SetDefault("growatt.user_agent", "")
	v.SetDefault("growatt.random_user_suffix", false)
	v.SetDefault("growatt.timeout", "30s")
	v.SetDefault("growatt.rate_limit", 0)
	v.SetDefault("growatt.rate_burst", 1)

	// Chart defaults
	v.SetDefault("chart.filter", filter.DefaultExpression)
	v.SetDefault("chart.timespan", "hour")

	// Exporter defaults
	v.SetDefault("exporter.listen", ":9090")
	v.SetDefault("exporter.metrics_path", "/metrics")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// Validate checks if the configuration is valid. Credentials are checked here rather
// than in Load so command line flags can fill them in first. The mix serial is only
// needed by some commands, see RequireMixSerial.
func (cfg *Config) Validate() error {
	if cfg.Growatt.Username == "" {
		return fmt.Errorf("growatt.username is required")
	}

	if cfg.Growatt.Password == "" {
		return fmt.Errorf("growatt.password is required")
	}

	if cfg.Growatt.RateLimit < 0 {
		return fmt.Errorf("growatt.rate_limit must not be negative")
	}

	if cfg.Growatt.Timeout < 0 {
		return fmt.Errorf("growatt.timeout must not be negative")
	}

	validTimespans := map[string]bool{
		"hour":  true,
		"day":   true,
		"month": true,
	}
	if !validTimespans[cfg.Chart.Timespan] {
		return fmt.Errorf("invalid chart.timespan: %s (must be 'hour', 'day' or 'month')", cfg.Chart.Timespan)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// RequireMixSerial fails when no mix serial number is configured
func (cfg *Config) RequireMixSerial() error {
	if cfg.Growatt.MixSerial == "" {
		return fmt.Errorf("growatt.mix_serial is required (set it in the config or pass --mixsn)")
	}
	return nil
}
