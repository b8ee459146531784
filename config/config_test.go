package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Growatt: GrowattConfig{
			Username:  "a@x.com",
			Password:  "secret",
			MixSerial: "MIX001",
		},
		Chart: ChartConfig{
			Timespan: "hour",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing username",
			mutate:  func(cfg *Config) { cfg.Growatt.Username = "" },
			wantErr: "growatt.username is required",
		},
		{
			name:    "missing password",
			mutate:  func(cfg *Config) { cfg.Growatt.Password = "" },
			wantErr: "growatt.password is required",
		},
		{
			name:   "missing mix serial is fine",
			mutate: func(cfg *Config) { cfg.Growatt.MixSerial = "" },
		},
		{
			name:    "negative rate limit",
			mutate:  func(cfg *Config) { cfg.Growatt.RateLimit = -1 },
			wantErr: "rate_limit",
		},
		{
			name:    "invalid timespan",
			mutate:  func(cfg *Config) { cfg.Chart.Timespan = "week" },
			wantErr: "invalid chart.timespan: week",
		},
		{
			name:    "invalid level",
			mutate:  func(cfg *Config) { cfg.Logging.Level = "trace" },
			wantErr: "invalid logging level",
		},
		{
			name:    "invalid format",
			mutate:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequireMixSerial(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.RequireMixSerial())

	cfg.Growatt.MixSerial = ""
	err := cfg.RequireMixSerial()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "growatt.mix_serial is required")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
growatt:
  username: a@x.com
  password: secret
  mix_serial: MIX001
  timeout: 15s
  rate_limit: 0.5
chart:
  timespan: day
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "a@x.com", cfg.Growatt.Username)
	assert.Equal(t, "MIX001", cfg.Growatt.MixSerial)
	assert.Equal(t, 15*time.Second, cfg.Growatt.Timeout)
	assert.Equal(t, 0.5, cfg.Growatt.RateLimit)
	assert.Equal(t, 1, cfg.Growatt.RateBurst)
	assert.Equal(t, "https://server-api.growatt.com/", cfg.Growatt.ServerURL)
	assert.Equal(t, "day", cfg.Chart.Timespan)
	assert.Equal(t, `sysOut != "0"`, cfg.Chart.Filter)
	assert.Equal(t, ":9090", cfg.Exporter.Listen)
	assert.Equal(t, "/metrics", cfg.Exporter.MetricsPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}

func TestLoadFromEnvironment(t *testing.T) {
	// No config.yaml in an empty working directory
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	t.Setenv("MIXWATCH_GROWATT_USERNAME", "env@x.com")
	t.Setenv("MIXWATCH_GROWATT_PASSWORD", "from-env")
	t.Setenv("MIXWATCH_GROWATT_MIX_SERIAL", "MIXENV")
	t.Setenv("MIXWATCH_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env@x.com", cfg.Growatt.Username)
	assert.Equal(t, "from-env", cfg.Growatt.Password)
	assert.Equal(t, "MIXENV", cfg.Growatt.MixSerial)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Growatt.Timeout)
}
