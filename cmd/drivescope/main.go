package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nhdewitt/drivescope/internal/config"
	"github.com/nhdewitt/drivescope/internal/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

// options holds the flag values; they only win over the environment when set
// on the command line.
type options struct {
	timeout          time.Duration
	queryTimeout     time.Duration
	latencyThreshold time.Duration
	heuristics       string
	fallback         string
	logLevel         string
	diagnostics      bool
	progress         bool
	json             bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		opts options
		cfg  *config.Config
	)

	defaults := config.Default()

	root := &cobra.Command{
		Use:          "drivescope",
		Short:        "Report system facts and the media type behind each fixed drive",
		Long:         "drivescope collects OS, CPU, memory, disk, virtualization and boot facts.\nEach fixed drive is classified as HDD, SSD, SSD (NVMe), SCM or Unknown.",
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, loaded, opts)
			if err := loaded.Validate(); err != nil {
				return err
			}
			logger.Init(loaded.LogLevel)
			logger.Debugf("Configuration: %+v", *loaded)
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), cfg, opts.json)
		},
	}

	pf := root.PersistentFlags()
	pf.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "deadline for the whole run ("+config.EnvTimeout+")")
	pf.DurationVar(&opts.queryTimeout, "query-timeout", defaults.QueryTimeout, "bound on each storage query ("+config.EnvQueryTimeout+")")
	pf.DurationVar(&opts.latencyThreshold, "latency-threshold", defaults.LatencyThreshold, "average latency under which a disk counts as solid state ("+config.EnvLatencyThreshold+")")
	pf.StringVar(&opts.heuristics, "heuristics", defaults.HeuristicsFile, "YAML file replacing the built-in model heuristics ("+config.EnvHeuristics+")")
	pf.StringVar(&opts.fallback, "fallback", defaults.FallbackPolicy, "system-wide scan policy: unanimous, first or never ("+config.EnvFallback+")")
	pf.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "log level ("+config.EnvLogLevel+")")
	pf.BoolVar(&opts.diagnostics, "diagnostics", defaults.Diagnostics, "print every classifier attempt ("+config.EnvDiagnostics+")")
	pf.BoolVar(&opts.json, "json", false, "write JSON instead of text")

	root.Flags().BoolVar(&opts.progress, "progress", defaults.Progress, "show a progress bar on a terminal ("+config.EnvProgress+")")

	root.AddCommand(newTypeCmd(&cfg, &opts), newHeuristicsCmd(&cfg))
	return root
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if changed("query-timeout") {
		cfg.QueryTimeout = opts.queryTimeout
	}
	if changed("latency-threshold") {
		cfg.LatencyThreshold = opts.latencyThreshold
	}
	if changed("heuristics") {
		cfg.HeuristicsFile = opts.heuristics
	}
	if changed("fallback") {
		cfg.FallbackPolicy = opts.fallback
	}
	if changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if changed("diagnostics") {
		cfg.Diagnostics = opts.diagnostics
	}
	if changed("progress") {
		cfg.Progress = opts.progress
	}
}
