// Package main is the entry point for the contractd API server.
// It loads configuration, connects to backing services, sets up routing,
// and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"contractd/internal/authz"
	"contractd/internal/cache"
	"contractd/internal/config"
	"contractd/internal/contracts"
	"contractd/internal/database"
	"contractd/internal/export"
	"contractd/internal/handlers"
	"contractd/internal/router"
	"contractd/internal/session"
	"contractd/internal/storage"
	"contractd/internal/store"
	"contractd/internal/templates"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := cache.Connect(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	sessionStore := session.NewStore(redisClient)
	listingCache := cache.NewListingCache(redisClient, cache.DefaultListingTTL)

	userStore := store.NewUserStore(db)
	templateStore := store.NewTemplateStore(db)
	contractStore := store.NewContractStore(db)
	documentStore := store.NewDocumentStore(db)

	// S3-compatible object storage for export artifacts (optional — the
	// API works without it, but document export is disabled).
	artifactStore, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if artifactStore != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, document export disabled")
	}

	// External document renderer (optional, same caveat).
	timeoutSecs, err := strconv.Atoi(cfg.RendererTimeout)
	if err != nil || timeoutSecs < 1 {
		timeoutSecs = 60
	}
	exporter := export.NewHTTPExporter(cfg.RendererURL, time.Duration(timeoutSecs)*time.Second)
	if exporter == nil {
		slog.Warn("renderer not configured, document export disabled")
	}

	policy := authz.NewPolicy()

	templateSvc := templates.NewService(templateStore, policy, listingCache)

	// The exporter interface value must stay nil when unconfigured; a
	// typed nil pointer would pass the service's nil check.
	var exp export.Exporter
	if exporter != nil {
		exp = exporter
	}
	var artifacts contracts.ArtifactStore
	if artifactStore != nil {
		artifacts = artifactStore
	}
	contractSvc := contracts.NewService(contracts.DBStores{
		Contracts: contractStore,
		Templates: templateStore,
		Documents: documentStore,
	}, policy, exp, artifacts)

	authHandlers := handlers.NewAuth(sessionStore, userStore)
	templateHandlers := handlers.NewTemplates(templateSvc)
	contractHandlers := handlers.NewContracts(contractSvc)

	r := router.New(sessionStore, authHandlers, templateHandlers, contractHandlers)

	// WriteTimeout must accommodate export requests that wait on the
	// external renderer.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
