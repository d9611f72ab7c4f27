// Package config handles loading and validating the application
// configuration from a JSON config file, with a handful of
// environment-variable overrides for operational knobs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from the consumer's
// config file. The file is read once at startup; changes require a
// restart.
type Config struct {
	// RelayHost is the websocket host to subscribe to, e.g.
	// "bsky.network" — the scheme and subscribe path are added by the
	// firehose client.
	RelayHost string `json:"relayHost"`

	// Exporter selects the sink: "jsonl", "csv", "document-store" or
	// "dry-run". Empty means "dry-run".
	Exporter string `json:"exporter"`

	// OutputPath is the destination file for the jsonl and csv
	// exporters.
	OutputPath string `json:"outputPath,omitempty"`

	// DocStoreConn is the Postgres connection string used by the
	// document-store exporter.
	DocStoreConn string `json:"docStoreConn,omitempty"`

	// FetchUserData enables the profile-cache lookup that enriches
	// document-store writes with author profile data.
	FetchUserData bool `json:"fetchUserData"`

	// MetricsAddr is the listen address for the Prometheus scrape
	// endpoint (default "0.0.0.0:9100").
	MetricsAddr string `json:"metricsAddr,omitempty"`

	// MaxSampleSize is the post count past which the posts_total metric
	// resets to zero; 0 disables the reset. Overridable via
	// MAX_SAMPLE_SIZE.
	MaxSampleSize int64 `json:"maxSampleSize,omitempty"`

	// NormalizeLangs toggles BCP-47 language-tag normalization of post
	// language facets. Overridable via NORMALIZE_LANGS.
	NormalizeLangs bool `json:"normalizeLangs"`
}

const (
	defaultMetricsAddr   = "0.0.0.0:9100"
	defaultMaxSampleSize = int64(10000)
)

// Load reads and parses configuration from the given file path, then
// applies environment-variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Config{
		MetricsAddr:    defaultMetricsAddr,
		MaxSampleSize:  defaultMaxSampleSize,
		NormalizeLangs: true,
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = defaultMetricsAddr
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides lets MAX_SAMPLE_SIZE and NORMALIZE_LANGS win over
// whatever the config file set, matching an operator's expectation that
// environment variables are the last word.
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("MAX_SAMPLE_SIZE"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxSampleSize = n
		}
	}
	if v, ok := os.LookupEnv("NORMALIZE_LANGS"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NormalizeLangs = b
		}
	}
}

// validate checks that all required fields are present for the
// configured exporter.
func (c *Config) validate() error {
	if c.RelayHost == "" {
		return fmt.Errorf("config: relayHost is required")
	}

	switch c.Exporter {
	case "", "dry-run":
	case "jsonl", "csv":
		if c.OutputPath == "" {
			return fmt.Errorf("config: outputPath is required for exporter %q", c.Exporter)
		}
	case "document-store":
		if c.DocStoreConn == "" {
			return fmt.Errorf("config: docStoreConn is required for exporter %q", c.Exporter)
		}
	default:
		return fmt.Errorf("config: unknown exporter %q", c.Exporter)
	}

	return nil
}
