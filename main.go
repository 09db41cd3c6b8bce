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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"api_pos/api"
	"api_pos/internal/config"
	"api_pos/internal/inventory"
	"api_pos/internal/logging"
	"api_pos/internal/media"
	"api_pos/internal/report"
	"api_pos/internal/sales"
	"api_pos/internal/session"
	"api_pos/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.Stringer("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	salesStorage, productStorage, closeDB, err := openStorage(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	sessionStore, closeSessions, err := openSessions(ctx, cfg.Session, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	exporter, err := report.NewExporter(logger, otel.Meter("api_pos/report"))
	if err != nil {
		return err
	}

	deps := api.Deps{
		Sales:        sales.NewService(salesStorage, logger),
		Inventory:    inventory.NewService(productStorage, logger),
		Exporter:     exporter,
		Sessions:     session.NewResolver(sessionStore, logger),
		SessionStore: sessionStore,
		Logger:       logger,
	}
	if cfg.Cloudinary.Enabled() {
		deps.Images = media.NewClient(media.Config{
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
			BaseURL:   cfg.Cloudinary.BaseURL,
			Timeout:   cfg.Cloudinary.Timeout,
		}, logger)
	} else {
		logger.Warn("cloudinary credentials not set, image deletion disabled")
	}
	if cfg.Telemetry.Endpoint != "" {
		deps.TracingService = cfg.Telemetry.ServiceName
	}

	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	api.InitRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("error trying to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// openStorage selects Postgres when a database URL is configured and the
// in-memory stores otherwise.
func openStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (sales.Storage, inventory.Storage, func(), error) {
	if cfg.URL == "" {
		logger.Info("using in-memory storage")
		return sales.NewLocalStorage(), inventory.NewLocalStorage(), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("ping database: %w", err)
	}

	salesStorage, err := sales.NewPostgresStorage(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	productStorage, err := inventory.NewPostgresStorage(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	logger.Info("using postgres storage")
	return salesStorage, productStorage, pool.Close, nil
}

// openSessions selects Redis when an address is configured.
func openSessions(ctx context.Context, cfg config.SessionConfig, logger *zap.Logger) (session.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory sessions")
		return session.NewMemoryStore(cfg.TTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("using redis sessions", zap.String("addr", cfg.RedisAddr))
	return session.NewRedisStore(client, cfg.TTL), func() { client.Close() }, nil
}
