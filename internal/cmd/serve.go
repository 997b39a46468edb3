package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docbundle/internal/api"
	"github.com/dgallion1/docbundle/internal/config"
	"github.com/dgallion1/docbundle/internal/metrics"
	"github.com/dgallion1/docbundle/internal/pipeline"
)

// NewServeCommand creates the serve command: one build, then an HTTP server
// for the page, run status and metrics until interrupted.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build once and serve the page over HTTP",
		Long: `Build the documentation page once, then serve it.

Endpoints:
  GET /                 the page
  GET /health           liveness
  GET /api/status       last run and render latency stats
  GET /api/categories   category rules in effect
  GET /metrics          Prometheus metrics

The page is not rebuilt while serving.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default "+config.DefaultAddr+")")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	rec := metrics.NewPrometheusRecorder(nil)
	orch, err := pipeline.NewOrchestrator(cfg, log, pipeline.WithMetrics(rec))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	path, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	green := color.New(color.FgGreen, color.Bold)
	green.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s in %s, serving on %s\n", path, elapsed(start), cfg.Addr)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewServer(orch, rec.Handler(), log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting docbundle server", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
