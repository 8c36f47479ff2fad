package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/teamforge/internal/adapters/archive"
	"github.com/okian/teamforge/internal/adapters/http/api"
	"github.com/okian/teamforge/internal/adapters/http/swagger"
	service "github.com/okian/teamforge/internal/app"
	"github.com/okian/teamforge/internal/config"
	"github.com/okian/teamforge/pkg/logger"
	"github.com/okian/teamforge/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Run the HTTP API. Settings come from defaults, then TEAMFORGE_CONFIG, then TEAMFORGE_* environment variables.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}
}

// serve runs the API until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	if err := logger.InitWithOptions(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithActivityWeights(cfg.ActivityWeights, cfg.DefaultActivityWeight),
		service.WithRoundTimeLimit(cfg.RoundTimeLimit()),
		service.WithTurnCheckInterval(cfg.TurnCheckInterval()),
		service.WithDraftRetention(cfg.DraftRetention()),
		service.WithThemeLabels(cfg.ThemeLabels...),
	}
	if cfg.ArchiveDSN != "" {
		store, err := archive.Open(ctx, cfg.ArchiveDSN)
		if err != nil {
			return err
		}
		opts = append(opts, service.WithArchive(store))
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc, cfg.MaxLeaderboardLimit).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		runSystemMetrics(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return errors.Join(srv.Shutdown(shutdownCtx), svc.Stop(shutdownCtx))
	})

	err := g.Wait()
	log.Info(context.Background(), "server stopped")
	return err
}

// runSystemMetrics samples runtime gauges until ctx is cancelled.
func runSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
