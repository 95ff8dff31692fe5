package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nhdewitt/drivescope/internal/collector"
	"github.com/nhdewitt/drivescope/internal/config"
	"github.com/nhdewitt/drivescope/internal/logger"
	"github.com/nhdewitt/drivescope/internal/mediatype"
	"github.com/nhdewitt/drivescope/internal/protocol"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newResolver(cfg *config.Config) (*mediatype.Resolver, error) {
	opts, err := cfg.ResolverOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, mediatype.WithLogger(logger.Get()))
	return mediatype.New(mediatype.SystemSources(), opts...), nil
}

// runReport collects the full system report and writes it to w. A timed-out
// pass still prints what was collected before the error is returned.
func runReport(ctx context.Context, w io.Writer, cfg *config.Config, asJSON bool) error {
	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}

	disks := &collector.DiskCollector{
		Resolver:    resolver,
		Diagnostics: cfg.Diagnostics,
		Log:         logger.Get(),
	}

	bar := newProgressBar(len(collector.SystemTasks(disks)), cfg.Progress && !asJSON)
	disks.OnDrive = func(row protocol.DriveInfo) {
		bar.Describe(fmt.Sprintf("disks: %s %s", row.Drive, row.Type))
	}

	report, runErr := collector.CollectSystemInfo(ctx, disks,
		collector.WithTimeout(cfg.Timeout),
		collector.WithLogger(logger.Get()),
		collector.WithProgress(func(section string) {
			bar.Describe(section)
			_ = bar.Add(1)
		}),
	)
	_ = bar.Finish()

	if asJSON {
		if err := writeJSON(w, report); err != nil {
			return err
		}
	} else if err := writeReport(w, report, cfg.Diagnostics); err != nil {
		return err
	}

	if runErr != nil {
		if errors.Is(runErr, collector.ErrTimedOut) {
			logger.Warnf("Report is incomplete: %v", runErr)
		}
		return runErr
	}
	return nil
}

func newProgressBar(n int, enabled bool) *progressbar.ProgressBar {
	visible := enabled && term.IsTerminal(int(os.Stderr.Fd()))
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Collecting system information"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionFullWidth(),
		progressbar.OptionClearOnFinish(),
	)
}

func newTypeCmd(cfg **config.Config, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "type <drive>...",
		Short:   "Classify the media behind one or more drive letters",
		Example: "  drivescope type C\n  drivescope type C: D --diagnostics",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newResolver(*cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), (*cfg).Timeout)
			defer cancel()

			results := make([]mediatype.Result, 0, len(args))
			for _, drive := range args {
				if err := ctx.Err(); err != nil {
					return err
				}
				results = append(results, resolver.Resolve(ctx, drive))
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), typeRows(results))
			}
			return writeResults(cmd.OutOrStdout(), results, (*cfg).Diagnostics)
		},
	}
}

func newHeuristicsCmd(cfg **config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "heuristics",
		Short: "Print the active model and registry heuristics as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := (*cfg).Heuristics()
			if err != nil {
				return err
			}
			out, err := h.Marshal()
			if err != nil {
				return errors.Wrap(err, "marshal heuristics")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

type typeRow struct {
	Drive          string   `json:"drive"`
	Classification string   `json:"disk_type"`
	Method         string   `json:"method,omitempty"`
	DiskIndex      int      `json:"disk_index"`
	Note           string   `json:"note,omitempty"`
	Diagnostics    []string `json:"diagnostics"`
}

func typeRows(results []mediatype.Result) []typeRow {
	rows := make([]typeRow, 0, len(results))
	for _, r := range results {
		row := typeRow{
			Drive:          r.Drive,
			Classification: r.Classification.String(),
			Method:         string(r.Method),
			DiskIndex:      int(r.DiskIndex),
			Note:           r.Annotation(),
			Diagnostics:    make([]string, 0, len(r.Diagnostics)),
		}
		for _, d := range r.Diagnostics {
			row.Diagnostics = append(row.Diagnostics, d.String())
		}
		rows = append(rows, row)
	}
	return rows
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode json")
	}
	return nil
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
