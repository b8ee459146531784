package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Growatt  GrowattConfig  `mapstructure:"growatt"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Exporter ExporterConfig `mapstructure:"exporter"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GrowattConfig holds the account, the device and how to reach the server
type GrowattConfig struct {
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	PasswordHashed   bool          `mapstructure:"password_hashed"`
	MixSerial        string        `mapstructure:"mix_serial"`
	PlantID          string        `mapstructure:"plant_id"`
	ServerURL        string        `mapstructure:"server_url"`
	UserAgent        string        `mapstructure:"user_agent"`
	RandomUserSuffix bool          `mapstructure:"random_user_suffix"`
	Timeout          time.Duration `mapstructure:"timeout"`
	// RateLimit is in requests per second; 0 disables pacing
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// ChartConfig contains chart defaults for the chart and status commands
type ChartConfig struct {
	Filter   string `mapstructure:"filter"`
	Timespan string `mapstructure:"timespan"`
}

// ExporterConfig contains the Prometheus endpoint settings
type ExporterConfig struct {
	Listen      string `mapstructure:"listen"`
	MetricsPath string `mapstructure:"metrics_path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
