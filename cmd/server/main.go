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

	"github.com/JonMunkholm/leavetrack/internal/config"
	"github.com/JonMunkholm/leavetrack/internal/core"
	"github.com/JonMunkholm/leavetrack/internal/gallery"
	"github.com/JonMunkholm/leavetrack/internal/logging"
	"github.com/JonMunkholm/leavetrack/internal/session"
	"github.com/JonMunkholm/leavetrack/internal/upload"
	"github.com/JonMunkholm/leavetrack/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
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

	logCloser := logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	defer logCloser.Close()

	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	galleryStore, closeGallery, err := openGallery(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open gallery store", "error", err)
		os.Exit(1)
	}
	defer closeGallery()

	sessionStore, closeSessions, err := openSessions(ctx, cfg.Session)
	if err != nil {
		slog.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	defer closeSessions()

	service := core.NewService(core.Config{
		Upload: core.UploadSettings{
			Options: upload.Options{
				MaxSizeMB:     cfg.Upload.MaxSizeMB,
				AcceptedTypes: cfg.Upload.AcceptedTypes,
			},
			SimulatedDuration: cfg.Upload.SimulatedDuration,
			TickInterval:      cfg.Upload.TickInterval,
			PreviewMaxWidth:   cfg.Upload.PreviewMaxWidth,
			MaxConcurrent:     cfg.Upload.MaxConcurrent,
			MaxWaitTime:       cfg.Upload.MaxWaitTime,
		},
		SignupDelay: cfg.Session.SignupDelay,
		Gallery:     galleryStore,
		Sessions:    sessionStore,
	})

	server := web.NewServer(service, cfg)

	// Background jobs stop before the server so no uploader is evicted
	// while requests drain.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartJanitor(jobCtx, core.JanitorConfig{
		IdleTTL:       cfg.Upload.IdleTTL,
		CheckInterval: cfg.Janitor.CheckInterval,
	})

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.UploadLimiterStatus(); status.Active > 0 {
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
		cancelJobs()
		return
	}
	<-shutdownDone
	slog.Info("server stopped")
}

// openGallery connects to Postgres when a database URL is configured and
// falls back to an in-memory gallery otherwise.
func openGallery(ctx context.Context, cfg config.DatabaseConfig) (gallery.Store, func(), error) {
	if cfg.URL == "" {
		slog.Info("gallery store: memory")
		return nil, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	store := gallery.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("gallery store: postgres", "database", strings.TrimPrefix(u.Path, "/"))
	}
	return store, pool.Close, nil
}

// openSessions builds the configured session backend.
func openSessions(ctx context.Context, cfg config.SessionConfig) (session.Store, func(), error) {
	switch strings.ToLower(cfg.Backend) {
	case "file":
		store, err := session.NewFileStore(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("session store: file", "path", cfg.File)
		return store, func() {}, nil

	case "redis":
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("session store: redis", "ttl", cfg.TTL)
		return session.NewRedisStore(client, cfg.TTL), func() { closeRedis(client) }, nil

	default:
		slog.Info("session store: memory")
		return session.NewMemoryStore(), func() {}, nil
	}
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		slog.Warn("redis close error", "error", err)
	}
}
