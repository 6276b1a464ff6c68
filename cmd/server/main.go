package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/rawloader/internal/clients"
	"github.com/JonMunkholm/rawloader/internal/config"
	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/JonMunkholm/rawloader/internal/loader"
	"github.com/JonMunkholm/rawloader/internal/logging"
	"github.com/JonMunkholm/rawloader/internal/storage"
	"github.com/JonMunkholm/rawloader/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Overload lets a local .env win over the shell environment
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	store := storage.New(pool, cfg.Upload.BatchSize)
	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	var schemas clients.SchemaSource = clients.NewConfigClient(cfg.Clients.ConfigServiceURL, cfg.Clients.Timeout)
	if cfg.Cache.RedisURL != "" {
		cache, err := clients.NewRedisSchemaCache(ctx, cfg.Cache.RedisURL, cfg.Cache.SchemaTTL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		schemas = clients.NewCachedSchemaSource(schemas, cache)
		slog.Info("schema cache enabled", "ttl", cfg.Cache.SchemaTTL.String())
	}
	partners := clients.NewPartnerClient(cfg.Clients.PartnerServiceURL, cfg.Clients.Timeout)

	engine := core.NewEngine(core.Options{
		DefaultDateFormat: cfg.Engine.DateFormat,
		DateFallbacks:     cfg.Engine.DateFallbacks,
	})

	service := loader.New(engine, schemas, partners, store, loader.Config{
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWaitTime:   cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
		PreviewLimit:  cfg.Upload.PreviewLimit,
	})

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartRetention(jobCtx, loader.RetentionConfig{
		MaxAge:        cfg.Retention.MaxAge(),
		CheckInterval: cfg.Retention.CheckInterval,
	})

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
