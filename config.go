package pecs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds pecs configuration.
type Config struct {
	Region           string
	Cluster          string
	Services         []string      // explicit service names; empty means all services in the cluster
	PageSize         int32         // max services fetched when resolving "all"
	StabilizeTimeout time.Duration // upper bound for the post-update stability wait
	EndpointURL      string        // custom endpoint URL for simulator mode
}

// ConfigFromEnv loads configuration from environment variables.
func ConfigFromEnv() Config {
	return Config{
		Region:           envOrDefault("AWS_REGION", "us-east-1"),
		Cluster:          envOrDefault("PECS_CLUSTER", "default"),
		Services:         splitCSV(os.Getenv("PECS_SERVICES")),
		PageSize:         envInt32("PECS_PAGE_SIZE", 100),
		StabilizeTimeout: envDuration("PECS_STABILIZE_TIMEOUT", 10*time.Minute),
		EndpointURL:      os.Getenv("PECS_ENDPOINT_URL"),
	}
}

// Validate checks required configuration.
func (c Config) Validate() error {
	if c.Cluster == "" {
		return fmt.Errorf("ECS cluster name is required")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page size must be between 1 and 100, got %d", c.PageSize)
	}
	if c.StabilizeTimeout <= 0 {
		return fmt.Errorf("stabilize timeout must be positive, got %s", c.StabilizeTimeout)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt32(key string, def int32) int32 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			return int32(n)
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
