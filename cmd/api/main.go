package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"docstore/docs"
	"docstore/internal/auth"
	"docstore/internal/config"
	"docstore/internal/database"
	"docstore/internal/database/migration"
	"docstore/internal/events"
	"docstore/internal/extract"
	handlers "docstore/internal/http/handler"
	"docstore/internal/http/middleware"
	"docstore/internal/llm"
	"docstore/internal/logger"
	"docstore/internal/otel"
	"docstore/internal/repository/postgres"
	"docstore/internal/service"
	"docstore/internal/storage"
	"docstore/internal/tagging"
)

const shutdownTimeout = 10 * time.Second

// @title       Document Store API
// @version     1.0
// @description Upload, version and tag text and PDF documents.
// @BasePath    /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Location())

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("server_exited", "error", err)
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
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// PostgreSQL with pooling via database/sql, schema brought up to date on boot
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	if err := migration.EnsureMigrated(ctx, db, log); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	svcMetrics, err := service.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register service metrics: %w", err)
	}

	docRepo := postgres.NewDocumentPostgres(db)
	tagRepo := postgres.NewTagPostgres(db)
	authorRepo := postgres.NewAuthorPostgres(db)
	runRepo := postgres.NewTaggingRunPostgres(db)

	// Events from every process reach local SSE clients through Redis pub/sub.
	// Without Redis they are delivered to this process's clients only.
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	hub := events.NewHub()
	var publisher events.Publisher = hub
	bus := events.NewRedisBus(rdb, events.DefaultChannel, log)
	if err := bus.StartForwarder(ctx, hub.Broadcast); err != nil {
		log.Warnw("event_bus_unavailable", "error", err)
	} else {
		publisher = bus
	}

	asynqClient := asynq.NewClient(tagging.RedisOpt(cfg.Redis))
	defer asynqClient.Close()

	docSvc := service.NewDocumentService(service.Dependencies{
		Store:     store,
		Documents: docRepo,
		Tags:      tagRepo,
		Authors:   authorRepo,
		Runs:      runRepo,
		Extractor: extract.New(log),
		Queue:     tagging.NewClient(asynqClient, cfg.Worker.Queue),
		Events:    publisher,
		Metrics:   svcMetrics,
		Log:       log,
	}, service.Options{
		MaxSize:           cfg.Upload.MaxSize,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		DownloadURLTTL:    cfg.Upload.DownloadURLTTL,
	})
	catalogSvc := service.NewCatalogService(tagRepo, authorRepo)

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Oversized uploads are rejected by the service with FILE_TOO_LARGE;
		// the slack covers the multipart envelope.
		BodyLimit: int(cfg.Upload.MaxSize) + 1<<20,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Routes{
		DB:        db,
		Documents: docSvc,
		Catalog:   catalogSvc,
		Hub:       hub,
		Auth:      tokens,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Worker.Embedded {
		completer, closeLLM, err := llm.New(ctx, cfg.LLM, log)
		if err != nil {
			return fmt.Errorf("init llm: %w", err)
		}
		defer closeLLM()

		taggingMetrics, err := tagging.NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("register tagging metrics: %w", err)
		}
		processor := tagging.NewProcessor(
			tagging.NewWorkflow(completer, tagRepo, log),
			runRepo, publisher, taggingMetrics, log,
		)
		worker := tagging.NewServer(tagging.RedisOpt(cfg.Redis), cfg.Worker, log)

		g.Go(func() error {
			if err := worker.Start(processor.Handler()); err != nil {
				return fmt.Errorf("start worker: %w", err)
			}
			log.Infow("worker_started", "queue", cfg.Worker.Queue, "concurrency", cfg.Worker.Concurrency)
			<-gctx.Done()
			worker.Shutdown()
			return nil
		})
	}

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Infow("server_listening", "addr", addr, "storage", cfg.Upload.Driver)
		if err := app.Listen(addr); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		// Ending the SSE streams first lets Shutdown drain in-flight requests.
		hub.Close()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Infow("server_shutting_down")
		return app.ShutdownWithContext(sctx)
	})

	return g.Wait()
}
