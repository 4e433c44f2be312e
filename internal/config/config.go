package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	APIAddr     string

	// Exactly one of these selects the message store backend.
	DatabaseURL string
	SQLitePath  string

	LedgerRPCURL  string
	LedgerAccount string

	ExternalValidatorURL string
	RulesFile            string

	PollInterval time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:          os.Getenv("APP_ENV"),
		APIAddr:              getenv("API_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SQLitePath:           os.Getenv("SQLITE_PATH"),
		LedgerRPCURL:         os.Getenv("XRPL_RPC_URL"),
		LedgerAccount:        os.Getenv("XRPL_ACCOUNT"),
		ExternalValidatorURL: os.Getenv("EXTERNAL_VALIDATOR_URL"),
		RulesFile:            os.Getenv("RULES_FILE"),
		PollInterval:         time.Duration(getenvInt("POLL_INTERVAL_SECONDS", 30)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var missing []string

	if c.Environment == "" {
		missing = append(missing, "APP_ENV")
	}
	if c.LedgerRPCURL == "" {
		missing = append(missing, "XRPL_RPC_URL")
	}

	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}

	if c.DatabaseURL == "" && c.SQLitePath == "" {
		return errors.New("either DATABASE_URL or SQLITE_PATH must be set")
	}
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return errors.New("DATABASE_URL and SQLITE_PATH are mutually exclusive")
	}

	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL_SECONDS must be positive")
	}

	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
