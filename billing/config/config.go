// Package config reads worker configuration from the environment.
package config

import (
	"fmt"
	"os"
)

// Config holds everything the billing worker needs to connect to its
// collaborators.
type Config struct {
	// DatabaseURL is the postgres connection string for the billing
	// schema.
	DatabaseURL string
	// TemporalHostPort is the Temporal frontend address.
	TemporalHostPort string
	// TemporalNamespace defaults to "default".
	TemporalNamespace string
	// TaskQueue is the queue the billing worker polls.
	TaskQueue string
	// ChargeEngineURL is the base URL of the external charge module API.
	ChargeEngineURL string
}

// Load reads the configuration from the environment. DATABASE_URL and
// CHARGE_ENGINE_URL are required; the Temporal settings default to a
// local dev server.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		TemporalHostPort:  envOr("TEMPORAL_HOST_PORT", "localhost:7233"),
		TemporalNamespace: envOr("TEMPORAL_NAMESPACE", "default"),
		TaskQueue:         envOr("BILLING_TASK_QUEUE", "billing-batch"),
		ChargeEngineURL:   os.Getenv("CHARGE_ENGINE_URL"),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ChargeEngineURL == "" {
		return nil, fmt.Errorf("CHARGE_ENGINE_URL is required")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
