// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command rehber runs the bilingual guide publishing server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/uzmanrehber/rehber-go/internal/cache"
	"github.com/uzmanrehber/rehber-go/internal/config"
	"github.com/uzmanrehber/rehber-go/internal/handler"
	"github.com/uzmanrehber/rehber-go/internal/scheduler"
	"github.com/uzmanrehber/rehber-go/internal/service"
	"github.com/uzmanrehber/rehber-go/internal/store"
	"github.com/uzmanrehber/rehber-go/internal/translate"
	"github.com/uzmanrehber/rehber-go/internal/visitor"
)

// Build-time injected values:
// go build -ldflags "-X main.appVersion=1.0.0 -X main.appGitCommit=$(git rev-parse --short HEAD)"
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Rehber - bilingual guide publishing server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REHBER_DB_PATH             SQLite database path (default: ./data/rehber.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REHBER_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REHBER_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REHBER_ADMIN_TOKEN         Bearer token for the admin API (empty disables it)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REHBER_REDIS_URL           Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REHBER_TRANSLATE_API_KEY   Translation provider API key (empty disables translation)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("rehber %s (commit: %s)\n", appVersion, appGitCommit)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("closing database", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	st := store.New(db)

	backend, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	cacheMgr := cache.NewManager(backend, logger)
	defer func() {
		if err := cacheMgr.Close(); err != nil {
			slog.Error("closing cache", "error", err)
		}
	}()
	if cfg.UseRedisCache() {
		slog.Info("cache backend: redis", "prefix", cfg.CachePrefix)
	} else {
		slog.Info("cache backend: memory")
	}

	var translator service.Translator
	if cfg.TranslationEnabled() {
		translator = translate.New(translate.Config{
			APIKey:            cfg.TranslateAPIKey,
			BaseURL:           cfg.TranslateBaseURL,
			Model:             cfg.TranslateModel,
			Timeout:           cfg.TranslateTimeoutDuration(),
			RequestsPerSecond: cfg.TranslateRPS,
		}, logger)
		slog.Info("translation enabled", "model", cfg.TranslateModel)
	} else {
		translator = translate.Disabled{}
		slog.Warn("translation disabled: no API key configured")
	}

	categories := service.NewCategoryService(st, cacheMgr, translator, logger)
	guides := service.NewGuideService(st, cacheMgr, translator, logger)
	tags := service.NewTagService(st, cacheMgr, translator, logger)
	seoTags := service.NewSeoTagService(st, cacheMgr, translator, logger)
	statics := service.NewStaticsService(st, cacheMgr, translator, logger)

	tracker := visitor.NewTracker(st, cfg.VisitorIPSalt, logger)

	sched := scheduler.New(tracker, cacheMgr, cfg.VisitorRetention(), logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	content := handler.NewContentHandler(categories, guides, tags, statics, logger)
	admin := handler.NewAdminHandler(categories, guides, tags, seoTags, statics, cacheMgr, cfg.AdminToken, logger)
	r := handler.NewRouter(content, admin, tracker.Middleware)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
