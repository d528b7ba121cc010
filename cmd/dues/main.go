package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"dues/internal/backend"
	"dues/internal/cache"
	"dues/internal/cli"
	apphttp "dues/internal/http"
	applog "dues/internal/log"
	"dues/internal/metrics"
	"dues/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig()
	logger := cli.SetupLogger(cfg)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.With(applog.FieldComponent, applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	stats := cache.NewLRUCache[services.PeriodStats](cfg.StatsCacheSize, cfg.StatsCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(stats)

	m := metrics.New()
	opts := []services.Option{
		services.WithRecorder(m),
		services.WithStatsCache(stats),
		services.WithOperator(cfg.OperatorName),
	}
	if result.Events != nil {
		opts = append(opts, services.WithEventPublisher(result.Events))
	}
	svc := services.NewMemberService(result.Store, opts...)
	svc.Load(ctx)

	srv := apphttp.NewServer(":"+cfg.Port, svc, logger, m.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting dues server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", result.Events != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cacheManager.Run(gctx, cfg.StatsCacheTTL)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
