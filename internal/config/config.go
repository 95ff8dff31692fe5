package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nhdewitt/drivescope/internal/collector"
	"github.com/nhdewitt/drivescope/internal/mediatype"
)

// Environment variables read by Load.
const (
	EnvTimeout          = "DRIVESCOPE_TIMEOUT"
	EnvQueryTimeout     = "DRIVESCOPE_QUERY_TIMEOUT"
	EnvLatencyThreshold = "DRIVESCOPE_LATENCY_THRESHOLD"
	EnvHeuristics       = "DRIVESCOPE_HEURISTICS"
	EnvFallback         = "DRIVESCOPE_FALLBACK"
	EnvLogLevel         = "DRIVESCOPE_LOG_LEVEL"
	EnvDiagnostics      = "DRIVESCOPE_DIAGNOSTICS"
	EnvProgress         = "DRIVESCOPE_PROGRESS"
)

// Config holds the runtime configuration
type Config struct {
	Timeout          time.Duration `json:"timeout"`
	QueryTimeout     time.Duration `json:"query_timeout"`
	LatencyThreshold time.Duration `json:"latency_threshold"`
	HeuristicsFile   string        `json:"heuristics_file"`
	FallbackPolicy   string        `json:"fallback_policy"`
	LogLevel         string        `json:"log_level"`
	Diagnostics      bool          `json:"diagnostics"`
	Progress         bool          `json:"progress"`
}

func Default() *Config {
	return &Config{
		Timeout:          collector.DefaultTimeout,
		QueryTimeout:     mediatype.DefaultQueryTimeout,
		LatencyThreshold: mediatype.DefaultLatencyThreshold,
		FallbackPolicy:   mediatype.FallbackUnanimous.String(),
		LogLevel:         "info",
		Progress:         true,
	}
}

// Load applies environment overrides to the defaults. Command-line flags are
// layered on top by the caller, which then calls Validate.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{EnvTimeout, &cfg.Timeout},
		{EnvQueryTimeout, &cfg.QueryTimeout},
		{EnvLatencyThreshold, &cfg.LatencyThreshold},
	}
	for _, d := range durations {
		v, ok := lookup(d.env)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.dst = parsed
	}

	if v, ok := lookup(EnvHeuristics); ok {
		cfg.HeuristicsFile = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvFallback); ok && strings.TrimSpace(v) != "" {
		cfg.FallbackPolicy = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}

	bools := []struct {
		env string
		dst *bool
	}{
		{EnvDiagnostics, &cfg.Diagnostics},
		{EnvProgress, &cfg.Progress},
	}
	for _, b := range bools {
		v, ok := lookup(b.env)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not a boolean", b.env, v)
		}
		*b.dst = parsed
	}

	return cfg, nil
}

// Validate rejects settings the resolver and collector cannot run with.
func (cfg *Config) Validate() error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.QueryTimeout <= 0 {
		return fmt.Errorf("query-timeout must be positive, got %s", cfg.QueryTimeout)
	}
	if cfg.LatencyThreshold <= 0 {
		return fmt.Errorf("latency-threshold must be positive, got %s", cfg.LatencyThreshold)
	}
	if _, err := cfg.Policy(); err != nil {
		return fmt.Errorf("invalid fallback value: %w", err)
	}
	if cfg.HeuristicsFile != "" {
		if _, err := os.Stat(cfg.HeuristicsFile); err != nil {
			return fmt.Errorf("heuristics file: %w", err)
		}
	}
	return nil
}

// Policy parses FallbackPolicy.
func (cfg *Config) Policy() (mediatype.FallbackPolicy, error) {
	return mediatype.ParseFallbackPolicy(cfg.FallbackPolicy)
}

// Heuristics loads HeuristicsFile, or returns the built-in data set when no
// file is configured.
func (cfg *Config) Heuristics() (*mediatype.Heuristics, error) {
	if cfg.HeuristicsFile == "" {
		return mediatype.DefaultHeuristics(), nil
	}
	return mediatype.LoadHeuristicsFile(cfg.HeuristicsFile)
}

// ResolverOptions translates the configuration into resolver options.
func (cfg *Config) ResolverOptions() ([]mediatype.Option, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	h, err := cfg.Heuristics()
	if err != nil {
		return nil, err
	}
	return []mediatype.Option{
		mediatype.WithHeuristics(h),
		mediatype.WithFallbackPolicy(policy),
		mediatype.WithLatencyThreshold(cfg.LatencyThreshold),
		mediatype.WithQueryTimeout(cfg.QueryTimeout),
	}, nil
}
