package cleanup

import (
	"os"
	"strconv"
	"time"
)

// Config controls the sweep schedule
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
	DryRun   bool
}

// DefaultConfig returns the default schedule
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

// LoadConfig loads the schedule from environment variables
func LoadConfig() Config {
	def := DefaultConfig()
	return Config{
		Interval: getEnvDuration("CLEANUP_INTERVAL", def.Interval),
		Timeout:  getEnvDuration("CLEANUP_TIMEOUT", def.Timeout),
		DryRun:   getEnvBool("CLEANUP_DRY_RUN", def.DryRun),
	}
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
