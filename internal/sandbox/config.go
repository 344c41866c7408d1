package sandbox

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the sandbox server configuration
type Config struct {
	Host string
	Port int

	// Client credentials accepted by /v1/oauth/token
	ClientID     string
	ClientSecret string

	// Lifetimes of issued tokens
	AccessTokenTTL time.Duration
	UserTokenTTL   time.Duration

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// SeedFixtures loads the demo businesses, CMS pages and user
	SeedFixtures bool

	MetricsPath string
}

// DefaultConfig returns the configuration used by tests and local runs
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ClientID:        "sandbox-client",
		ClientSecret:    "sandbox-secret",
		AccessTokenTTL:  10 * time.Hour,
		UserTokenTTL:    time.Hour,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		SeedFixtures:    true,
		MetricsPath:     "/metrics",
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	cfg.Host = getEnvOrDefault("SANDBOX_HOST", cfg.Host)
	cfg.ClientID = getEnvOrDefault("SANDBOX_CLIENT_ID", cfg.ClientID)
	cfg.ClientSecret = getEnvOrDefault("SANDBOX_CLIENT_SECRET", cfg.ClientSecret)
	cfg.MetricsPath = getEnvOrDefault("METRICS_PATH", cfg.MetricsPath)
	cfg.SeedFixtures = getEnvOrDefault("SANDBOX_SEED", "true") == "true"

	port, err := strconv.Atoi(getEnvOrDefault("PORT", strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.Port = port

	durations := []struct {
		env  string
		dest *time.Duration
	}{
		{"SANDBOX_ACCESS_TOKEN_TTL", &cfg.AccessTokenTTL},
		{"SANDBOX_USER_TOKEN_TTL", &cfg.UserTokenTTL},
		{"REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		value := os.Getenv(d.env)
		if value == "" {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.dest = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

// Address returns the listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
