package config

import "fmt"

// Supported history drivers
const (
	HistoryDriverMemory   = "memory"
	HistoryDriverFile     = "file"
	HistoryDriverSQLite   = "sqlite"
	HistoryDriverPostgres = "postgres"
)

// ValidateHistoryConfig validates the history store configuration
func (c *Config) ValidateHistoryConfig() error {
	h := c.History

	switch h.Driver {
	case HistoryDriverMemory:
	case HistoryDriverFile, HistoryDriverSQLite:
		if h.Path == "" {
			return fmt.Errorf("history path is required for the %s driver", h.Driver)
		}
	case HistoryDriverPostgres:
		if h.DSN == "" && c.Vault.Secrets.HistoryDSN == "" {
			return fmt.Errorf("history dsn is required for the postgres driver (set PLACEMENTPREP_HISTORY_DSN or vault.secrets.historyDSN)")
		}
	default:
		return fmt.Errorf("invalid history driver: %s (must be 'memory', 'file', 'sqlite', or 'postgres')", h.Driver)
	}

	if h.Watch && h.Driver != HistoryDriverFile {
		return fmt.Errorf("history watch is only supported by the file driver")
	}

	return validateCircuitBreaker(h.CircuitBreaker)
}

// validateCircuitBreaker validates circuit breaker ratios and counts
func validateCircuitBreaker(cb CircuitBreakerConfig) error {
	if !cb.Enabled {
		return nil
	}
	if cb.FailureThreshold <= 0 || cb.FailureThreshold > 1 {
		return fmt.Errorf("circuit breaker failureThreshold must be in (0, 1], got %v", cb.FailureThreshold)
	}
	if cb.MinRequests == 0 {
		return fmt.Errorf("circuit breaker minRequests must be positive")
	}
	if cb.Timeout < 0 || cb.Interval < 0 {
		return fmt.Errorf("circuit breaker durations must not be negative")
	}
	return nil
}
