package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"docstore/internal/config"
	"docstore/internal/database"
	"docstore/internal/events"
	"docstore/internal/llm"
	"docstore/internal/logger"
	"docstore/internal/otel"
	"docstore/internal/repository/postgres"
	"docstore/internal/tagging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Location())

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("worker_exited", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

func run(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) error {
	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	completer, closeLLM, err := llm.New(ctx, cfg.LLM, log)
	if err != nil {
		return fmt.Errorf("init llm: %w", err)
	}
	defer closeLLM()

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	metrics, err := tagging.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register tagging metrics: %w", err)
	}
	if cfg.Worker.MetricsAddr != "" {
		metricsSrv := &http.Server{
			Addr:              cfg.Worker.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics_server_failed", "error", err)
			}
		}()
		defer metricsSrv.Close()
	}

	tagRepo := postgres.NewTagPostgres(db)
	processor := tagging.NewProcessor(
		tagging.NewWorkflow(completer, tagRepo, log),
		postgres.NewTaggingRunPostgres(db),
		events.NewRedisBus(rdb, events.DefaultChannel, log),
		metrics,
		log,
	)

	server := tagging.NewServer(tagging.RedisOpt(cfg.Redis), cfg.Worker, log)

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	log.Infow("worker_started", "queue", cfg.Worker.Queue, "concurrency", cfg.Worker.Concurrency, "llm_provider", cfg.LLM.Provider)
	if err := server.Run(processor.Handler()); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	return nil
}
