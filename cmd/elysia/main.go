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

	"github.com/a-thread/elysia-sub000/api"
	"github.com/a-thread/elysia-sub000/api/handler"
	"github.com/a-thread/elysia-sub000/cache"
	"github.com/a-thread/elysia-sub000/config"
	"github.com/a-thread/elysia-sub000/export"
	"github.com/a-thread/elysia-sub000/fetcher"
	"github.com/a-thread/elysia-sub000/scraper"
	"github.com/a-thread/elysia-sub000/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("elysia starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"proxy", cfg.Scraper.ProxyURL,
	)
	if cfg.Auth.Enabled && len(cfg.Auth.APIKeys) == 0 {
		slog.Warn("auth enabled but ELYSIA_API_KEYS is empty; API is open")
	}

	// ── 3. Fetcher + scraper ────────────────────────────────────────
	f := fetcher.NewProxyFetcher(fetcher.Options{
		ProxyURL:     cfg.Scraper.ProxyURL,
		UserAgent:    cfg.Scraper.UserAgent,
		MaxBodyBytes: cfg.Scraper.MaxBodyBytes,
	})
	sc := scraper.New(f)

	// ── 4. Cache, exporter, batch store + webhook notifier ──────────
	cc := cache.New(cfg.Cache.MaxEntries)
	defer cc.Stop()
	ex := export.NewExporter()
	batches := handler.NewBatchStore(webhook.New())

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(sc, ex, cfg, cc, batches, time.Now())

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// In-flight scrapes get their full timeout to finish.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scraper.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// Background batch jobs are not HTTP requests; cancel them explicitly.
	batches.Stop()
	slog.Info("batch jobs stopped")

	slog.Info("elysia stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
