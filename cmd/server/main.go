package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"

	specpkg "github.com/centralelevate/elevate/api"
	"github.com/centralelevate/elevate/internal/api"
	"github.com/centralelevate/elevate/internal/api/handler"
	"github.com/centralelevate/elevate/internal/auth"
	"github.com/centralelevate/elevate/internal/cache"
	"github.com/centralelevate/elevate/internal/catalog"
	"github.com/centralelevate/elevate/internal/config"
	"github.com/centralelevate/elevate/internal/database"
	"github.com/centralelevate/elevate/internal/events"
	"github.com/centralelevate/elevate/internal/product"
	"github.com/centralelevate/elevate/internal/storage"
	"github.com/centralelevate/elevate/internal/vercel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := auth.NewRepository(db.Pool())
	authService := auth.NewService(userRepo, cfg.BcryptCost)

	rawKey, err := authService.BootstrapAdmin(ctx)
	if err != nil {
		slog.Error("failed to bootstrap admin", "error", err)
		os.Exit(1)
	}
	if rawKey != "" {
		// Printed once; only the hash is stored.
		fmt.Fprintf(os.Stderr, "bootstrap admin API key: %s\n", rawKey)
	}

	snapshotCache, cachePinger := initCache(ctx, cfg)
	if c, ok := snapshotCache.(*cache.RedisClient); ok {
		defer c.Close()
	}

	publisher, nc := initEvents(cfg)
	if nc != nil {
		defer nc.Close()
	}

	images, err := storage.New(ctx, storage.Config{
		Driver:             cfg.StorageDriver,
		LocalDir:           cfg.LocalUploadDir,
		LocalURLPrefix:     cfg.LocalUploadURLPrefix,
		LocalPublicBaseURL: cfg.LocalUploadBaseURL,
		S3: storage.S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		},
	})
	if err != nil {
		slog.Error("failed to initialize image storage", "error", err)
		os.Exit(1)
	}

	products := catalog.NewService(product.NewRepository(db.Pool()), snapshotCache, publisher, images, catalog.Options{
		CacheTTL:      cfg.CacheTTL,
		MaxImageBytes: cfg.MaxImageBytes,
	})

	var refresher handler.Refresher
	if cfg.VercelToken != "" {
		syncer := vercel.NewSyncer(products, vercel.NewClient(cfg.VercelAPIURL, cfg.VercelToken), cfg.VercelSyncInterval)
		go syncer.Start(ctx)
		refresher = syncer
	} else {
		slog.Info("VERCEL_TOKEN not set; deployment status sync disabled")
	}

	deps := api.RouterDeps{
		DBPinger:      db,
		CachePinger:   cachePinger,
		Version:       cfg.Version,
		OpenAPISpec:   specpkg.Spec,
		Authenticator: authService,
		UserIssuer:    authService,
		UserRepo:      userRepo,
		Products:      products,
		Refresher:     refresher,
		MaxImageBytes: cfg.MaxImageBytes,
	}
	if cfg.StorageDriver == "" || cfg.StorageDriver == "local" {
		deps.UploadDir = cfg.LocalUploadDir
		deps.UploadURLPrefix = cfg.LocalUploadURLPrefix
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting elevate server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(h))
}

// initCache connects to Redis when REDIS_ADDR is set. Without it the snapshot
// cache is disabled and health omits the cache section.
func initCache(ctx context.Context, cfg *config.Config) (catalog.Cache, handler.Pinger) {
	if cfg.RedisAddr == "" {
		slog.Info("REDIS_ADDR not set; product snapshot cache disabled")
		return cache.Nop{}, nil
	}

	rc := cache.NewRedisClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rc.Ping(ctx); err != nil {
		slog.Warn("redis unreachable at startup; cache reads will miss", "error", err)
	}
	return rc, rc
}

// initEvents connects to NATS when NATS_URL is set.
func initEvents(cfg *config.Config) (catalog.Publisher, *nats.Conn) {
	if cfg.NATSURL == "" {
		slog.Info("NATS_URL not set; product events disabled")
		return events.Nop{}, nil
	}

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("elevate-server"), nats.MaxReconnects(-1))
	if err != nil {
		slog.Warn("nats connection failed; product events disabled", "error", err)
		return events.Nop{}, nil
	}
	return events.NewNATSPublisher(nc, cfg.NATSSubject), nc
}
