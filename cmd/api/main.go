package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/httpx"
	"bookstore/internal/logging"
	"bookstore/internal/store"
)

const maxRequestBytes = 1 << 20

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.API.DSN)
	if err != nil {
		slog.Error("database unavailable", slog.String("dsn", redactDSN(cfg.API.DSN)), slog.Any("error", err))
		os.Exit(1)
	}
	defer dbPool.Close()

	bookRepository := store.NewBookPG(dbPool, cfg.API.DBTimeout)
	bookHandler := book.NewHTTPHandler(book.NewService(bookRepository))
	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	handler := httpx.Chain(newRouter(bookHandler, dbPool),
		httpx.RequestIDMiddleware,
		httpx.RecoveryMiddleware,
		httpx.AccessLogMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.Security.HSTS),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(maxRequestBytes),
	)

	httpServer := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("catalog api listening", slog.String("addr", cfg.API.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("catalog api stopped")
}

func newRouter(bookHandler *book.HTTPHandler, db pinger) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /books", bookHandler.List)
	router.HandleFunc("GET /books/{isbn}", bookHandler.GetByISBN)

	return router
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("database connection OK")
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
