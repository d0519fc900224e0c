package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/lsk7209/coindrop/internal/admin"
	"github.com/lsk7209/coindrop/internal/alert"
	"github.com/lsk7209/coindrop/internal/blob"
	"github.com/lsk7209/coindrop/internal/cache"
	"github.com/lsk7209/coindrop/internal/circuitbreaker"
	"github.com/lsk7209/coindrop/internal/collector"
	"github.com/lsk7209/coindrop/internal/config"
	"github.com/lsk7209/coindrop/internal/consumer"
	"github.com/lsk7209/coindrop/internal/engine"
	"github.com/lsk7209/coindrop/internal/metrics"
	"github.com/lsk7209/coindrop/internal/source/defillama"
	"github.com/lsk7209/coindrop/internal/store/postgres"
	redispkg "github.com/lsk7209/coindrop/internal/store/redis"
	"github.com/lsk7209/coindrop/internal/tracing"
	"github.com/lsk7209/coindrop/internal/webhook"
)

const dbStatsInterval = 15 * time.Second

func main() {
	logLevel := slog.LevelInfo
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting coindrop",
		"source_url", cfg.Source.URL,
		"collect_interval", cfg.Collector.Interval,
		"consumer_workers", cfg.Consumer.Workers,
		"engine_model", cfg.Engine.Model,
		"blob_bucket", cfg.Blob.Bucket,
		"admin_port", cfg.Server.AdminPort,
		"metrics_port", cfg.Server.MetricsPort,
	)

	tracingEndpoint := ""
	if cfg.Tracing.Enabled {
		tracingEndpoint = cfg.Tracing.Endpoint
	}
	shutdownTracing, err := tracing.Init(context.Background(), "coindrop", tracingEndpoint, cfg.Tracing.Insecure)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	if err := run(cfg, logger); err != nil {
		logger.Error("coindrop exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("coindrop stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	db, err := postgres.New(postgres.Config{
		URL:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.DB.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database ready", "migrations_dir", cfg.DB.MigrationsDir)

	projectRepo := postgres.NewProjectRepo(db)
	airdropRepo := postgres.NewAirdropRepo(db)
	contentRepo := postgres.NewContentRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Redis: queue + cache
	redisClient, err := redispkg.NewClient(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	queue, err := redispkg.NewStreamQueue(ctx, redisClient, cfg.Consumer.Stream, cfg.Consumer.Group)
	if err != nil {
		return fmt.Errorf("initialize queue: %w", err)
	}
	cacheStore := cache.NewRedis(redisClient)

	// Blob storage
	var blobs blob.Store
	if cfg.Blob.Bucket != "" {
		gcs, err := blob.NewGCSStore(ctx, cfg.Blob.Bucket, cfg.Blob.CredentialsFile)
		if err != nil {
			return fmt.Errorf("initialize blob store: %w", err)
		}
		defer gcs.Close()
		blobs = gcs
		logger.Info("blob store ready", "bucket", cfg.Blob.Bucket)
	} else {
		blobs = blob.NewMemoryStore()
		logger.Warn("no blob bucket configured, artifacts are held in memory only")
	}

	// Generation engine behind a circuit breaker
	eng, err := engine.NewGeminiEngine(ctx, cfg.Engine.APIKey, cfg.Engine.Model, logger)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	breaker := circuitbreaker.New(circuitbreaker.Config{
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("engine circuit breaker state change", "from", from.String(), "to", to.String())
		},
	})

	notifier := webhook.NewNotifier(cfg.Webhook.BaseURL, cfg.Webhook.RevalidateToken, cfg.Webhook.PublishURL, logger)
	alerter := buildAlerter(cfg, logger)

	fetcher := defillama.New(cfg.Source.URL, cfg.Source.Timeout, cfg.Source.RateLimit, logger)
	coll := collector.New(fetcher, cacheStore, projectRepo, airdropRepo, queue, logger)

	cons := consumer.New(
		consumer.Options{
			Workers:         cfg.Consumer.Workers,
			GenerateTimeout: cfg.Engine.Timeout,
			BaseURL:         cfg.Webhook.BaseURL,
		},
		queue, eng, breaker,
		projectRepo, airdropRepo, contentRepo,
		blobs, cacheStore, notifier, alerter, logger,
	)

	adminServer := admin.NewServer(coll, statsRepo, cacheStore, queue, blobs, cfg.Collector.Token, logger)
	rateLimiter := admin.NewRateLimitMiddleware(logger)
	defer rateLimiter.Stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error { return cons.Run(gCtx) })
	g.Go(func() error { return runCollectLoop(gCtx, coll, cfg.Collector.Interval, alerter, logger) })
	g.Go(func() error {
		return runServer(gCtx, "admin", cfg.Server.AdminPort, adminServer.Handler(rateLimiter), logger)
	})
	g.Go(func() error { return runMetricsServer(gCtx, cfg.Server.MetricsPort, logger) })
	g.Go(func() error { return reportDBStats(gCtx, db) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func buildAlerter(cfg *config.Config, logger *slog.Logger) alert.Alerter {
	var channels []alert.Alerter
	if cfg.Alert.TelegramBotToken != "" && cfg.Alert.TelegramChatID != "" {
		channels = append(channels, alert.NewTelegramAlerter(cfg.Alert.TelegramBotToken, cfg.Alert.TelegramChatID))
	}
	if cfg.Alert.WebhookURL != "" {
		channels = append(channels, alert.NewWebhookAlerter(cfg.Alert.WebhookURL))
	}
	if len(channels) == 0 {
		logger.Info("no alert channels configured")
		return &alert.NoopAlerter{}
	}
	return alert.NewMultiAlerter(cfg.Alert.Cooldown, logger, channels...)
}

// runCollectLoop triggers a collection batch every interval. Failures
// alert but never stop the loop; the next tick retries from scratch.
func runCollectLoop(ctx context.Context, coll *collector.Collector, interval time.Duration, alerter alert.Alerter, logger *slog.Logger) error {
	if interval <= 0 {
		logger.Info("periodic collection disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("periodic collection enabled", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		summary, err := coll.Run(ctx, "scheduled")
		if err != nil {
			if errors.Is(err, collector.ErrBatchInProgress) {
				logger.Warn("scheduled batch skipped, previous batch still running")
				continue
			}
			logger.Error("scheduled collection batch failed", "error", err)
			alertErr := alerter.Send(ctx, alert.Alert{
				Type:      alert.AlertTypeSourceFailure,
				Component: "collector",
				Subject:   "scheduled-batch",
				Title:     "Scheduled collection batch failed",
				Message:   err.Error(),
			})
			if alertErr != nil {
				logger.Warn("source failure alert failed", "error", alertErr)
			}
			continue
		}
		logger.Info("scheduled collection batch finished",
			"processed", summary.Processed,
			"new_projects", summary.NewProjects,
			"new_airdrops", summary.NewAirdrops,
			"errors", summary.Errors,
			"duration_ms", summary.DurationMS,
		)
	}
}

func runServer(ctx context.Context, name string, port int, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("server shutdown error", "server", name, "error", err)
		}
	}()

	logger.Info("server started", "server", name, "port", port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

func runMetricsServer(ctx context.Context, port int, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return runServer(ctx, "metrics", port, mux, logger)
}

// reportDBStats keeps the connection pool gauges fresh.
func reportDBStats(ctx context.Context, db *postgres.DB) error {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats := db.Stats()
			metrics.DBPoolOpen.Set(float64(stats.OpenConnections))
			metrics.DBPoolInUse.Set(float64(stats.InUse))
			metrics.DBPoolIdle.Set(float64(stats.Idle))
		}
	}
}
