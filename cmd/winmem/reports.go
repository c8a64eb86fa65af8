package main

import (
	"github.com/spf13/cobra"

	"github.com/danpilch/winmem/pkg/output"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

// collectionFailed maps a rejected collection to the tool-error exit code.
func collectionFailed(err error) error {
	return &exitError{code: use.ExitToolError, err: err}
}

func (a *app) perfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "perf",
		Short: "Show system performance information (GetPerformanceInfo)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.collectContext(cmd)
			defer cancel()

			pi, err := withProgress(a, "Reading performance information...", func() (winmem.PerformanceInfo, error) {
				return a.client.GetPerformanceInfo(ctx).Await(ctx)
			})
			if err != nil {
				return collectionFailed(err)
			}
			return a.formatter().RenderPerformanceInfo(pi)
		},
	}
}

func (a *app) globalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Show global memory status (GlobalMemoryStatusEx)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.collectContext(cmd)
			defer cancel()

			gms, err := withProgress(a, "Reading global memory status...", func() (winmem.GlobalMemoryStatus, error) {
				return a.client.GlobalMemoryStatus(ctx).Await(ctx)
			})
			if err != nil {
				return collectionFailed(err)
			}
			return a.formatter().RenderGlobalMemoryStatus(gms)
		},
	}
}

func (a *app) processesCmd() *cobra.Command {
	var (
		sortBy     string
		top        int
		failedOnly bool
	)
	cmd := &cobra.Command{
		Use:     "processes",
		Aliases: []string{"ps"},
		Short:   "Show memory counters for every running process",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("sort") {
				sortBy = a.cfg.SortBy
			}
			if !cmd.Flags().Changed("top") {
				top = a.cfg.TopN
			}
			key, err := output.ParseSortKey(sortBy)
			if err != nil {
				return &exitError{code: use.ExitToolError, err: err}
			}

			ctx, cancel := a.collectContext(cmd)
			defer cancel()

			report, err := withProgress(a, "Reading process memory...", func() (winmem.ProcessMemoryReport, error) {
				return a.client.GetProcessMemory(ctx).Await(ctx)
			})
			if err != nil {
				return collectionFailed(err)
			}
			a.logger.WithField("processes", len(report)).WithField("inaccessible", report.FailedCount()).Debug("Process memory collected")
			return a.formatter().RenderProcessMemory(report, output.ProcessView{
				SortBy:     key,
				TopN:       top,
				FailedOnly: failedOnly,
			})
		},
	}
	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(output.SortWorkingSet), "sort by working-set, private, pagefile, faults, name or pid")
	cmd.Flags().IntVarP(&top, "top", "n", 10, "show only the first N processes (0 for all)")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "show only processes whose counters could not be read")
	return cmd
}
