package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config search paths at an empty directory
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, []string{"json", "text", "markdown"}, cfg.App.SupportedFormats)
	assert.Equal(t, 200, cfg.App.ShortDocumentChars)
	assert.Equal(t, HistoryDriverFile, cfg.History.Driver)
	assert.Equal(t, "placementprep-history.json", cfg.History.Path)
	assert.True(t, cfg.History.CircuitBreaker.Enabled)
	assert.Equal(t, 30*time.Second, cfg.History.CircuitBreaker.Timeout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.Equal(t, "placementprep", cfg.Observability.ServiceName)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PLACEMENTPREP_HISTORY_DRIVER", "Memory")
	t.Setenv("PLACEMENTPREP_SERVER_PORT", "9999")
	t.Setenv("PLACEMENTPREP_SERVER_APIKEYS", "first, second")
	t.Setenv("PLACEMENTPREP_APP_LOGLEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, HistoryDriverMemory, cfg.History.Driver)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, []string{"first", "second"}, cfg.Server.APIKeys)
	assert.True(t, cfg.Observability.ConsoleOutput)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := isolate(t)
	content := `
app:
  defaultFormat: markdown
  maxConcurrency: 8
history:
  driver: sqlite
  path: prep.db
server:
  rateLimit:
    enabled: true
    requestsPerMin: 120
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.App.DefaultFormat)
	assert.Equal(t, 8, cfg.App.MaxConcurrency)
	assert.Equal(t, HistoryDriverSQLite, cfg.History.Driver)
	assert.Equal(t, "prep.db", cfg.History.Path)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 120, cfg.Server.RateLimit.RequestsPerMin)
	assert.Equal(t, 10, cfg.Server.RateLimit.BurstCapacity)
	assert.Equal(t, RateBudget{RequestsPerMin: 20, BurstCapacity: 5}, cfg.Server.RateLimit.Analyze)
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("history:\n  driver: mongo\n"), 0600))

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "invalid history driver: mongo")
}

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text"},
			MaxFileSize:      1024,
			MaxConcurrency:   2,
		},
		History: HistoryConfig{
			Driver: HistoryDriverMemory,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				MinRequests:      3,
				FailureThreshold: 0.5,
			},
		},
		Server: ServerConfig{Port: "8080", TLS: TLSConfig{Mode: "disabled"}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:        "missing port",
			mutate:      func(c *Config) { c.Server.Port = "" },
			expectError: "server port is required",
		},
		{
			name:        "unsupported default format",
			mutate:      func(c *Config) { c.App.DefaultFormat = "xml" },
			expectError: "invalid default format: xml",
		},
		{
			name:        "zero concurrency",
			mutate:      func(c *Config) { c.App.MaxConcurrency = 0 },
			expectError: "maxConcurrency must be positive",
		},
		{
			name:        "file driver without path",
			mutate:      func(c *Config) { c.History.Driver = HistoryDriverFile },
			expectError: "history path is required for the file driver",
		},
		{
			name:        "postgres without dsn",
			mutate:      func(c *Config) { c.History.Driver = HistoryDriverPostgres },
			expectError: "history dsn is required",
		},
		{
			name: "postgres dsn from vault",
			mutate: func(c *Config) {
				c.History.Driver = HistoryDriverPostgres
				c.Vault.Secrets.HistoryDSN = "secret/data/db"
			},
		},
		{
			name: "watch on sqlite",
			mutate: func(c *Config) {
				c.History.Driver = HistoryDriverSQLite
				c.History.Path = "x.db"
				c.History.Watch = true
			},
			expectError: "history watch is only supported by the file driver",
		},
		{
			name:        "breaker threshold out of range",
			mutate:      func(c *Config) { c.History.CircuitBreaker.FailureThreshold = 1.5 },
			expectError: "failureThreshold must be in (0, 1]",
		},
		{
			name: "disabled breaker skips checks",
			mutate: func(c *Config) {
				c.History.CircuitBreaker = CircuitBreakerConfig{Enabled: false}
			},
		},
		{
			name: "rate limit with both budgets",
			mutate: func(c *Config) {
				c.Server.RateLimit = RateLimitConfig{
					Enabled: true, RequestsPerMin: 60, BurstCapacity: 10,
					Analyze: RateBudget{RequestsPerMin: 20, BurstCapacity: 5},
				}
			},
		},
		{
			name: "rate limit without analyze budget",
			mutate: func(c *Config) {
				c.Server.RateLimit = RateLimitConfig{Enabled: true, RequestsPerMin: 60, BurstCapacity: 10}
			},
			expectError: "analyze rate limit requestsPerMin and burstCapacity must be positive",
		},
		{
			name:        "bad tls mode",
			mutate:      func(c *Config) { c.Server.TLS.Mode = "always" },
			expectError: "TLS configuration error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.expectError)
		})
	}
}
