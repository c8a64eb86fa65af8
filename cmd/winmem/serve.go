package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/kardianos/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danpilch/winmem/pkg/export"
	"github.com/danpilch/winmem/pkg/use"
)

func (a *app) exporter() *export.Collector {
	return export.NewCollector(a.client,
		export.WithScrapeTimeout(a.cfg.Timeout.Duration),
		export.WithCollectorLogger(a.logger),
	)
}

func (a *app) serveFlags(cmd *cobra.Command, addr, path *string) {
	cmd.Flags().StringVar(addr, "addr", "", "listen address (default from config, :9182)")
	cmd.Flags().StringVar(path, "path", "", "metrics path (default from config, /metrics)")
}

func (a *app) applyServeFlags(cmd *cobra.Command, addr, path string) {
	if cmd.Flags().Changed("addr") {
		a.cfg.Serve.Addr = addr
	}
	if cmd.Flags().Changed("path") {
		a.cfg.Serve.Path = path
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr, path string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the reports as Prometheus metrics, collected on every scrape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.applyServeFlags(cmd, addr, path)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := export.NewRegistry(a.exporter())
			srv := export.NewServer(a.cfg.Serve.Addr, a.cfg.Serve.Path, reg, a.logger)
			if err := export.Serve(ctx, srv, a.logger); err != nil {
				return &exitError{code: use.ExitToolError, err: err}
			}
			return nil
		},
	}
	a.serveFlags(cmd, &addr, &path)
	return cmd
}

func (a *app) publishCmd() *cobra.Command {
	var url, subject, system string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish one snapshot of every report to NATS JetStream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("url") {
				a.cfg.NATS.URL = url
			}
			if cmd.Flags().Changed("subject") {
				a.cfg.NATS.Subject = subject
			}
			if system == "" {
				system, _ = os.Hostname()
			}

			ctx, cancel := a.collectContext(cmd)
			defer cancel()

			payload, err := withProgress(a, "Collecting snapshot...", func() (export.Payload, error) {
				return export.BuildPayload(ctx, a.client, system)
			})
			if err != nil {
				return collectionFailed(err)
			}
			for op, msg := range payload.Errors {
				a.logger.WithFields(logrus.Fields{"collection": op, "error": msg}).Warn("Snapshot published without collection")
			}

			js, drain, err := export.Dial(a.cfg.NATS.URL, a.cfg.NATS.Timeout.Duration)
			if err != nil {
				return &exitError{code: use.ExitToolError, err: err}
			}
			defer func() {
				if err := drain(); err != nil {
					a.logger.WithError(err).Warn("Draining NATS connection failed")
				}
			}()

			pubCtx, pubCancel := context.WithTimeout(cmd.Context(), a.cfg.NATS.Timeout.Duration)
			defer pubCancel()
			ack, err := export.PublishSnapshot(pubCtx, js, a.cfg.NATS.Subject, payload)
			if err != nil {
				return &exitError{code: use.ExitToolError, err: err}
			}
			fmt.Fprintf(a.stdout, "Published snapshot of %s to %s (stream %s, sequence %d)\n",
				payload.SystemName, a.cfg.NATS.Subject, ack.Stream, ack.Sequence)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "NATS server URL (default from config)")
	cmd.Flags().StringVar(&subject, "subject", "", "JetStream subject (default from config)")
	cmd.Flags().StringVar(&system, "system-name", "", "system name in the payload (default: hostname)")
	return cmd
}

// program hosts the metrics endpoint under the service manager.
type program struct {
	a      *app
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	reg := export.NewRegistry(p.a.exporter())
	srv := export.NewServer(p.a.cfg.Serve.Addr, p.a.cfg.Serve.Path, reg, p.a.logger)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := export.Serve(ctx, srv, p.a.logger); err != nil {
			p.a.logger.WithError(err).Error("Metrics endpoint failed")
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	p.a.logger.Info("Service stopping")
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

var serviceActions = []string{"install", "uninstall", "start", "stop", "restart", "run"}

func (a *app) serviceCmd() *cobra.Command {
	var addr, path string
	cmd := &cobra.Command{
		Use:       "service ACTION",
		Short:     "Install, control or run winmem serve as a system service",
		Long:      "Install, control or run winmem serve as a system service. ACTION is one of install, uninstall, start, stop, restart or run.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: serviceActions,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.applyServeFlags(cmd, addr, path)

			svcArgs := []string{"service", "run"}
			if a.configPath != "" {
				abs, err := filepath.Abs(a.configPath)
				if err != nil {
					return &exitError{code: use.ExitToolError, err: err}
				}
				svcArgs = append(svcArgs, "--config", abs)
			}
			if addr != "" {
				svcArgs = append(svcArgs, "--addr", addr)
			}
			if path != "" {
				svcArgs = append(svcArgs, "--path", path)
			}

			s, err := service.New(&program{a: a}, &service.Config{
				Name:        "winmem",
				DisplayName: "winmem Memory Exporter",
				Description: "Exposes Windows memory telemetry in Prometheus format.",
				Arguments:   svcArgs,
			})
			if err != nil {
				return &exitError{code: use.ExitToolError, err: fmt.Errorf("creating service: %w", err)}
			}

			if args[0] == "run" {
				if err := s.Run(); err != nil {
					return &exitError{code: use.ExitToolError, err: err}
				}
				return nil
			}
			if err := service.Control(s, args[0]); err != nil {
				return &exitError{code: use.ExitToolError, err: fmt.Errorf("service %s: %w", args[0], err)}
			}
			fmt.Fprintf(a.stdout, "Service action %q executed successfully.\n", args[0])
			return nil
		},
	}
	a.serveFlags(cmd, &addr, &path)
	return cmd
}
