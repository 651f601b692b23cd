package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"bookstore/internal/bookstate"
	"bookstore/internal/config"
	"bookstore/internal/httpx"
	"bookstore/internal/logging"
	"bookstore/internal/platform/booksapi"
	"bookstore/internal/platform/broker"
	"bookstore/internal/storefront"
)

func main() {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storefront.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "missing required env var: JWT_SECRET")
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	slog.SetDefault(logger)
	slog.Info("books api upstream",
		slog.String("url", cfg.BooksAPI.BaseURL),
		slog.Int("rps", cfg.BooksAPI.RPS),
		slog.Duration("timeout", cfg.BooksAPI.Timeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := booksapi.NewClient(cfg.BooksAPI.BaseURL, cfg.BooksAPI.UserAgent, cfg.BooksAPI.RPS, cfg.BooksAPI.Timeout)
	store := bookstate.NewStore(client, storeOptions(cfg, logger)...)

	hub := storefront.NewHub()
	unwatch := hub.Watch(store)
	defer unwatch()

	if err := store.Dispatch(ctx, bookstate.BooksGet{}); err != nil {
		slog.Warn("initial books fetch failed, serving empty list", slog.Any("error", err))
	}

	e := newServer(ctx, cfg, store, hub)

	var wg sync.WaitGroup
	var consumer *broker.CatalogConsumer
	if cfg.KafkaEnabled() {
		consumer = broker.NewCatalogConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, store)
		wg.Add(1)
		go func() {
			defer wg.Done()
			slog.Info("catalog consumer started",
				slog.Any("brokers", cfg.Kafka.Brokers),
				slog.String("topic", cfg.Kafka.Topic),
				slog.String("group", cfg.Kafka.GroupID),
			)
			_ = consumer.Run(ctx)
		}()
	}

	go func() {
		slog.Info("storefront listening", slog.String("addr", cfg.Storefront.Addr))
		if err := e.Start(cfg.Storefront.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", slog.Any("error", err))
	}
	hub.Close()
	wg.Wait()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			slog.Warn("kafka reader close", slog.Any("error", err))
		}
	}
}

const maxRequestBytes = 1 << 16

func storeOptions(cfg *config.Config, logger *slog.Logger) []bookstate.Option {
	opts := []bookstate.Option{bookstate.WithLogger(logger)}
	if cfg.Storefront.CoalesceFetches {
		opts = append(opts, bookstate.WithCoalescing())
	}
	return opts
}

func newServer(ctx context.Context, cfg *config.Config, store *bookstate.Store, hub *storefront.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(log.Writer())

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	e.Use(
		echo.WrapMiddleware(httpx.RequestIDMiddleware),
		echo.WrapMiddleware(httpx.RecoveryMiddleware),
		echo.WrapMiddleware(httpx.SecurityHeadersMiddleware(cfg.Security.HSTS)),
		echo.WrapMiddleware(httpx.CORSMiddleware(httpx.CORSConfig{
			AllowedOrigins: cfg.Storefront.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			MaxAge:         600,
		})),
		echo.WrapMiddleware(rateLimiter.Middleware),
		echo.WrapMiddleware(httpx.RequestSizeLimitMiddleware(maxRequestBytes)),
	)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	storefront.NewHandler(store, hub, cfg.Storefront.AllowedOrigins).Register(e, cfg.Storefront.JWTSecret)
	return e
}
