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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/packcat/internal/caniuse"
	"github.com/JonMunkholm/packcat/internal/config"
	"github.com/JonMunkholm/packcat/internal/core"
	"github.com/JonMunkholm/packcat/internal/fetch"
	"github.com/JonMunkholm/packcat/internal/logging"
	"github.com/JonMunkholm/packcat/internal/web"
)

func main() {
	// Overload lets a local .env win over the shell environment.
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

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"download_max_concurrent", cfg.Download.MaxConcurrent,
		"download_dir", cfg.Download.Dir,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
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

	store := core.NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("failed to create schema", "error", err)
		os.Exit(1)
	}

	client := fetch.NewClient(fetch.Options{
		Timeout:      cfg.Fetch.Timeout,
		MaxBytes:     cfg.Fetch.MaxCatalogBytes,
		MaxFileBytes: cfg.Fetch.MaxPackBytes,
		UserAgent:    cfg.Fetch.UserAgent,
		AllowedHosts: cfg.Fetch.AllowedHosts,
	})
	if !cfg.Security.RequireAPIKey && len(cfg.Fetch.AllowedHosts) == 0 {
		slog.Warn("imports fetch any http(s) URL without an API key; set REQUIRE_API_KEY or FETCH_ALLOWED_HOSTS before exposing this server")
	}

	service := core.NewService(store, client, core.Options{
		MaxConcurrentImports:   cfg.Import.MaxConcurrent,
		ImportMaxWait:          cfg.Import.MaxWaitTime,
		ImportTimeout:          cfg.Import.Timeout,
		MaxConcurrentDownloads: cfg.Download.MaxConcurrent,
		DownloadMaxWait:        cfg.Download.MaxWaitTime,
		DownloadDir:            cfg.Download.Dir,
	})

	server := web.NewServer(service, caniuse.NewClient(client), *cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Status(); status.Imports.Active > 0 || status.Downloads.Active > 0 {
			slog.Info("waiting for imports and downloads",
				"imports", status.Imports.Active,
				"downloads", status.Downloads.Active,
			)
			if err := service.WaitForIdle(shutdownCtx); err != nil {
				slog.Warn("work did not complete in time", "error", err)
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
