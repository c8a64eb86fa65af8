package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danpilch/winmem/pkg/baseline"
	"github.com/danpilch/winmem/pkg/collectors"
	"github.com/danpilch/winmem/pkg/use"
)

func (a *app) baselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Save, compare and list check baselines",
	}
	cmd.AddCommand(a.baselineSaveCmd(), a.baselineCompareCmd(), a.baselineListCmd())
	return cmd
}

func (a *app) baselineSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save NAME",
		Short: "Run the checks and save them as a named baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checks, err := a.runChecks(cmd, collectors.NewDefaultRegistry(a.client).Collectors())
			if err != nil {
				return collectionFailed(err)
			}

			ctx, cancel := a.collectContext(cmd)
			defer cancel()
			b := baseline.NewBaseline(args[0], checks, nil)
			if gms, err := a.client.GlobalMemoryStatus(ctx).Await(ctx); err == nil {
				b.Global = &gms
			} else {
				a.logger.WithError(err).Warn("Baseline saved without global memory status")
			}

			dir := a.baselineDir()
			if err := b.Save(dir); err != nil {
				return &exitError{code: use.ExitToolError, err: err}
			}
			fmt.Fprintf(a.stdout, "Saved baseline %q with %d checks to %s\n", b.Name, len(b.Checks), dir)
			return nil
		},
	}
}

func (a *app) baselineCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare NAME",
		Short: "Run the checks and compare them to a saved baseline",
		Long: `Run the checks and compare them to a saved baseline.

Exits 1 when any metric regressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := baseline.Load(args[0], a.baselineDir())
			if err != nil {
				return &exitError{code: use.ExitToolError, err: err}
			}
			checks, err := a.runChecks(cmd, collectors.NewDefaultRegistry(a.client).Collectors())
			if err != nil {
				return collectionFailed(err)
			}

			comparisons := baseline.Compare(b, checks)
			baseline.RenderComparison(a.stdout, b, comparisons)
			if baseline.Regressions(comparisons) > 0 {
				return &exitError{code: use.ExitWarning}
			}
			return nil
		},
	}
}

func (a *app) baselineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved baselines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := baseline.List(a.baselineDir())
			if err != nil {
				return &exitError{code: use.ExitToolError, err: err}
			}
			if len(names) == 0 {
				fmt.Fprintln(a.stdout, "No baselines saved.")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(a.stdout, name)
			}
			return nil
		},
	}
}
