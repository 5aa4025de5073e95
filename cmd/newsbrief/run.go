package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsbrief/internal/app"
	"github.com/deusflow/newsbrief/internal/config"
	"github.com/deusflow/newsbrief/internal/logger"
	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/processor"
	"github.com/deusflow/newsbrief/internal/scheduler"
	"github.com/deusflow/newsbrief/internal/server"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch feeds and write the digest to stdout",
		Long: `Run one ingest cycle, or keep running on INGEST_SCHEDULE when it is set.
The HTTP API is served alongside when ENABLE_HTTP is true. The digest is
written as JSON lines, or as plain-text blocks with --output text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if output, _ := cmd.Flags().GetString("output"); output != "" {
				cfg.OutputFormat = output
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runIngest(ctx, cfg)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Digest format: json or text (overrides OUTPUT_FORMAT)")
	return cmd
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the summarize API and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			proc, err := newProcessor(cfg, true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stopServer := startServer(cfg, proc)
			defer stopServer()

			<-ctx.Done()
			return nil
		},
	}

	return cmd
}

func runIngest(ctx context.Context, cfg *config.Config) error {
	// A long-running process pays the training cost up front.
	longRunning := cfg.EnableHTTP || cfg.IngestSchedule != ""
	proc, err := newProcessor(cfg, longRunning)
	if err != nil {
		return err
	}

	if cfg.EnableHTTP {
		stopServer := startServer(cfg, proc)
		defer stopServer()
	}

	a, err := app.New(ctx, cfg, proc, metrics.Global, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.IngestSchedule == "" {
		if err := a.RunOnce(ctx); err != nil {
			return err
		}
		if cfg.EnableHTTP {
			logger.Info("run complete, serving HTTP until interrupted")
			<-ctx.Done()
		}
		return nil
	}

	sched, err := scheduler.New(cfg.IngestSchedule, a.RunOnce)
	if err != nil {
		return err
	}
	sched.Start()
	logger.Info("waiting for scheduled runs", "schedule", cfg.IngestSchedule, "next_run", sched.Next())

	<-ctx.Done()
	logger.Info("shutting down")
	sched.Stop()
	return nil
}

// startServer serves HTTP in the background and returns its shutdown func.
func startServer(cfg *config.Config, proc *processor.Processor) func() {
	srv := server.New(cfg.HTTPAddr, proc, metrics.Global)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
