package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danpilch/winmem/pkg/baseline"
	"github.com/danpilch/winmem/pkg/config"
	"github.com/danpilch/winmem/pkg/debug"
	"github.com/danpilch/winmem/pkg/logging"
	"github.com/danpilch/winmem/pkg/output"
	"github.com/danpilch/winmem/pkg/use"
	"github.com/danpilch/winmem/pkg/winmem"
)

// exitError carries a non-zero exit code out of a command. A nil err means
// the command already reported its outcome.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// app holds the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	flags      flagValues

	cfg    config.Config
	format output.Format
	logger *logrus.Logger
	client *winmem.Client

	closers []func()
	stdout  io.Writer
	stderr  io.Writer
}

type flagValues struct {
	format   string
	workers  int
	timeout  time.Duration
	logLevel string
	pprof    string
}

func newApp() *app {
	return &app{stdout: os.Stdout, stderr: os.Stderr}
}

func execute() int {
	a := newApp()
	root := a.rootCmd()
	err := root.ExecuteContext(context.Background())
	a.close()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(a.stderr, "Error:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(a.stderr, "Error:", err)
	return use.ExitToolError
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "winmem",
		Short:         "Windows memory telemetry",
		Long:          "winmem collects system performance counters, global memory status and per-process memory counters, and turns them into health checks, reports and exports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "path to a JSON config file")
	pf.StringVarP(&a.flags.format, "format", "f", "table", "output format: table, json, tsv or ai")
	pf.IntVarP(&a.flags.workers, "workers", "w", 0, "concurrent per-process reads (default: number of CPUs)")
	pf.DurationVar(&a.flags.timeout, "timeout", 30*time.Second, "how long to wait for a collection")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.pprof, "pprof", "", "serve pprof handlers at this address (e.g. localhost:6060)")

	cmd.AddCommand(
		a.perfCmd(),
		a.globalCmd(),
		a.processesCmd(),
		a.checkCmd(),
		a.workloadCmd(),
		a.baselineCmd(),
		a.benchCmd(),
		a.serveCmd(),
		a.publishCmd(),
		a.serviceCmd(),
	)
	return cmd
}

// setup resolves the configuration (defaults, file, environment, then
// explicitly set flags) and builds the logger and client.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return &exitError{code: use.ExitToolError, err: err}
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = a.flags.format
	}
	if flags.Changed("workers") {
		cfg.Workers = a.flags.workers
	}
	if flags.Changed("timeout") {
		cfg.Timeout.Duration = a.flags.timeout
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if flags.Changed("pprof") {
		cfg.PprofAddr = a.flags.pprof
	}
	if err := cfg.Validate(); err != nil {
		return &exitError{code: use.ExitToolError, err: err}
	}
	a.cfg = cfg
	a.format, _ = output.ParseFormat(cfg.Format)

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return &exitError{code: use.ExitToolError, err: err}
	}
	a.logger = logger
	a.closers = append(a.closers, func() { _ = closer.Close() })

	if cfg.PprofAddr != "" {
		stop, err := debug.StartPprofServer(cfg.PprofAddr, logger)
		if err != nil {
			return &exitError{code: use.ExitToolError, err: err}
		}
		a.closers = append(a.closers, stop)
	}

	a.client = winmem.NewClient(winmem.WithLogger(logger), winmem.WithConcurrency(cfg.Workers))
	logger.WithFields(logrus.Fields{
		"format":  cfg.Format,
		"workers": cfg.Workers,
		"timeout": cfg.Timeout.Duration,
	}).Debug("Configuration resolved")
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// collectContext bounds a command's collections by the configured timeout.
func (a *app) collectContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.Timeout.Duration)
}

func (a *app) baselineDir() string {
	if a.cfg.BaselineDir != "" {
		return a.cfg.BaselineDir
	}
	return baseline.DefaultDir()
}

func (a *app) formatter() *output.Formatter {
	f := output.NewFormatter(a.format, a.stdout)
	f.SetShowScore(a.cfg.ShowScore)
	return f
}
