package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AngelCh415/brandpulse/internal/config"
	"github.com/AngelCh415/brandpulse/internal/httpx"
	"github.com/AngelCh415/brandpulse/internal/ingest"
	"github.com/AngelCh415/brandpulse/internal/metrics"
	"github.com/AngelCh415/brandpulse/internal/store"
)

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewDatasetStore()
	etl := ingest.NewETL(cl, st, logger, cfg)
	mSvc := metrics.NewService(st, cfg.Attribution(), cfg.MERTargetDefault)

	r := httpx.NewRouter(logger, etl, mSvc, st)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var worker *ingest.Worker
	if cfg.HasSources() && cfg.RefreshInterval > 0 {
		worker = ingest.NewWorker(etl, logger, cfg.RefreshInterval)
		worker.Start()
	} else {
		logger.Warn("background refresh disabled", slog.Bool("has_sources", cfg.HasSources()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if worker != nil {
			worker.Stop()
		}
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
