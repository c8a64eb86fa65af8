package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danpilch/winmem/pkg/benchmark"
	"github.com/danpilch/winmem/pkg/collectors"
	"github.com/danpilch/winmem/pkg/crosscheck"
	"github.com/danpilch/winmem/pkg/debug"
	"github.com/danpilch/winmem/pkg/output"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/workload"
)

// runCollector runs a single collector. A collection failure becomes an
// unknown check, as it does for a full run.
func (a *app) runCollector(cmd *cobra.Command, col use.Collector) []use.Check {
	ctx, cancel := a.collectContext(cmd)
	defer cancel()

	checker := use.NewChecker(a.cfg.Thresholds, a.logger)
	checks, _ := withProgress(a, "Running "+col.Name()+" checks...", func() ([]use.Check, error) {
		checks, err := checker.RunOne(ctx, col)
		if err != nil {
			a.logger.WithField("collector", col.Name()).WithError(err).Warn("Collector failed")
			return []use.Check{use.UnknownCheck(col.Name(), err)}, nil
		}
		return checks, nil
	})
	return checks
}

// runChecks runs the given collectors and returns their checks.
func (a *app) runChecks(cmd *cobra.Command, cols []use.Collector) ([]use.Check, error) {
	ctx, cancel := a.collectContext(cmd)
	defer cancel()

	checker := use.NewChecker(a.cfg.Thresholds, a.logger)
	return withProgress(a, "Running memory checks...", func() ([]use.Check, error) {
		return checker.RunAll(ctx, cols), nil
	})
}

func (a *app) checkCmd() *cobra.Command {
	var (
		score       bool
		raw         bool
		timing      bool
		crossChecks bool
		only        string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run USE health checks over memory, commit and processes",
		Long: `Run USE health checks over memory, commit and processes.

Exit codes: 0 all ok, 1 warning, 2 critical, 3 tool error or unknown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("score") {
				a.cfg.ShowScore = score
			}

			registry := collectors.NewDefaultRegistry(a.client)
			cols := registry.Collectors()
			if only != "" {
				col := registry.GetByName(only)
				if col == nil {
					return &exitError{code: use.ExitToolError, err: fmt.Errorf("unknown collector %q (want one of %s)", only, strings.Join(registry.Names(), ", "))}
				}
				cols = []use.Collector{col}
			}
			var timed []*debug.TimedCollector
			if timing {
				timed = debug.WrapAll(cols)
				cols = make([]use.Collector, len(timed))
				for i, t := range timed {
					cols[i] = t
				}
			}

			var checks []use.Check
			if only != "" {
				checks = a.runCollector(cmd, cols[0])
			} else {
				var err error
				if checks, err = a.runChecks(cmd, cols); err != nil {
					return collectionFailed(err)
				}
			}
			if err := a.formatter().Render(checks); err != nil {
				return err
			}
			if raw {
				debug.DumpRawMetrics(a.stdout, checks)
			}
			if timing {
				debug.TimingReport(a.stdout, timed)
			}

			code := use.ExitCode(checks)
			if crossChecks {
				ctx, cancel := a.collectContext(cmd)
				defer cancel()
				res, err := crosscheck.RunCrossChecks(ctx, a.client, crosscheck.Gopsutil{}, checks, a.logger)
				if err != nil {
					return collectionFailed(fmt.Errorf("cross-checks: %w", err))
				}
				if a.format == output.FormatJSON {
					if err := crosscheck.ReportJSON(a.stdout, res); err != nil {
						return err
					}
				} else {
					crosscheck.Report(a.stdout, res)
				}
				if res.Failed() && code < use.ExitWarning {
					code = use.ExitWarning
				}
			}
			if code != use.ExitOK {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&score, "score", false, "show the 0-100 health score")
	cmd.Flags().BoolVar(&raw, "raw", false, "dump raw values and their native sources")
	cmd.Flags().BoolVar(&timing, "timing", false, "report how long each collector took")
	cmd.Flags().StringVar(&only, "collector", "", "run only this collector (Memory, Commit or Processes)")
	cmd.Flags().BoolVar(&crossChecks, "crosscheck", false, "compare sources against each other and run sanity checks")
	return cmd
}

func (a *app) workloadCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Rank processes by working set, private bytes and page-file use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("top") {
				top = a.cfg.TopN
			}
			ctx, cancel := a.collectContext(cmd)
			defer cancel()

			report, err := withProgress(a, "Characterizing workload...", func() (*workload.Report, error) {
				return workload.Collect(ctx, a.client, top)
			})
			if err != nil {
				return collectionFailed(err)
			}
			if a.format == output.FormatJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			report.Render(a.stdout)
			return nil
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 10, "processes per ranking (0 for all)")
	return cmd
}

func (a *app) benchCmd() *cobra.Command {
	var (
		opts           = benchmark.DefaultOptions()
		withCollectors bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the latency of each collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Iterations < 1 {
				return &exitError{code: use.ExitToolError, err: fmt.Errorf("--iterations must be at least 1")}
			}
			targets := benchmark.OperationTargets(a.client)
			if withCollectors {
				cols := collectors.NewDefaultRegistry(a.client).Collectors()
				targets = append(targets, benchmark.CollectorTargets(cols, a.cfg.Thresholds)...)
			}

			results, _ := withProgress(a, "Benchmarking...", func() ([]benchmark.Result, error) {
				return benchmark.Run(cmd.Context(), targets, opts), nil
			})
			if a.format == output.FormatJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			benchmark.RenderResults(a.stdout, results, benchmark.MeasureOverhead())
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Iterations, "iterations", opts.Iterations, "measured runs per target")
	cmd.Flags().IntVar(&opts.Warmup, "warmup", opts.Warmup, "unmeasured runs per target")
	cmd.Flags().BoolVar(&withCollectors, "collectors", false, "also benchmark each health-check collector")
	return cmd
}
