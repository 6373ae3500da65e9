package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quantfeed/tapefeed/internal/buffer"
	"github.com/quantfeed/tapefeed/internal/clock"
	"github.com/quantfeed/tapefeed/internal/config"
	"github.com/quantfeed/tapefeed/internal/connection"
	"github.com/quantfeed/tapefeed/internal/dispatch"
	"github.com/quantfeed/tapefeed/internal/events"
	"github.com/quantfeed/tapefeed/internal/history"
	"github.com/quantfeed/tapefeed/internal/market"
	"github.com/quantfeed/tapefeed/internal/metrics"
	"github.com/quantfeed/tapefeed/internal/version"
)

func main() {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/tapefeed.local.yaml", "path to config file")
	flag.Parse()

	// Load configuration first so the log level can honor feed.debug.
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Feed.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tapefeed",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"feed_url", cfg.Feed.URL,
		"pair", cfg.Feed.Pair,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Shared state
	em := events.NewEmitter()
	m := metrics.New(nil)
	buf := buffer.New(em)
	clk := clock.New()
	exchanges := market.NewExchangeSet()

	unsubscribe := em.Subscribe(eventLogger(logger))
	defer unsubscribe()

	dispatcher := dispatch.New(
		dispatch.Config{Debug: cfg.Feed.Debug},
		em, buf, clk, exchanges, m, logger,
	)

	// Backfill client: REST endpoint derived from the feed URL unless
	// configured explicitly.
	baseURL := cfg.History.BaseURL
	if baseURL == "" {
		baseURL = history.DeriveBaseURL(cfg.Feed.URL)
	}
	histClient := history.NewClient(
		baseURL,
		history.WithTimeout(cfg.History.Timeout),
		history.WithRetries(cfg.History.MaxRetries, cfg.History.RetryBackoff),
		history.WithLogger(logger),
	)
	fetcher := history.NewFetcher(histClient, buf, clk, em, m, logger)

	manager := connection.NewManager(connection.ManagerConfig{
		URL:                cfg.Feed.URL,
		ColdReconnectDelay: cfg.Connection.ColdReconnectDelay,
		WarmReconnectDelay: cfg.Connection.WarmReconnectDelay,
		BackoffFactor:      cfg.Connection.BackoffFactor,
		MaxReconnectDelay:  cfg.Connection.MaxReconnectDelay,
		PingInterval:       cfg.Connection.PingInterval,
		PingTimeout:        cfg.Connection.PingTimeout,
		WriteTimeout:       cfg.Connection.WriteTimeout,
		BufferSize:         cfg.Connection.BufferSize,
	}, dispatcher, em, m, logger)

	// Metrics server
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}
	go func() {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Initial backfill before the live stream starts appending.
	initialMinutes := int64(cfg.History.InitialLoad.Minutes())
	if err := fetcher.FetchRecent(ctx, initialMinutes); err != nil {
		logger.Warn("initial backfill failed, continuing with live stream only", "error", err)
	}

	if err := manager.Connect(ctx); err != nil {
		logger.Warn("initial connect failed, reconnect scheduled", "error", err)
	}

	// Periodic trim keeps the buffer bounded to the retention window.
	go func() {
		ticker := time.NewTicker(cfg.Buffer.TrimInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().UnixMilli() - cfg.Buffer.MaxAge.Milliseconds()
				if removed := buf.Trim(cutoff); removed > 0 {
					m.TrimmedTotal.Add(float64(removed))
					m.BufferSize.Set(float64(buf.Len()))
				}
			}
		}
	}()

	logger.Info("tapefeed running",
		"metrics_url", fmt.Sprintf("http://localhost:%d%s", cfg.Metrics.Port, cfg.Metrics.Path),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	manager.Disconnect()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	metricsServer.Shutdown(shutdownCtx)

	logger.Info("tapefeed stopped")
}

// eventLogger maps feed events onto structured log lines. It stands in for
// a display layer; everything a UI would render flows through here.
func eventLogger(logger *slog.Logger) events.Handler {
	return func(ev events.Event) {
		switch e := ev.(type) {
		case events.Connected:
			logger.Info("feed connected")
		case events.Disconnected:
			logger.Info("feed disconnected")
		case events.Error:
			logger.Error("feed error", "error", e.Err)
		case events.Trades:
			logger.Debug("trades", "count", len(e.Batch))
		case events.Price:
			logger.Debug("price", "value", e.Value, "state", e.State)
		case events.Welcome:
			logger.Info("feed welcome", "pair", e.Pair, "exchanges", len(e.Exchanges), "admin", e.Admin)
		case events.Pair:
			logger.Info("tracking pair", "pair", e.Pair, "forced", e.Forced)
		case events.Exchanges:
			logger.Info("connected exchanges", "ids", e.IDs)
		case events.Alert:
			logger.Info("alert", "type", e.Type, "message", e.Message)
		case events.FetchProgress:
			logger.Debug("backfill progress", "loaded", e.Loaded, "total", e.Total)
		case events.History:
			logger.Info("history merged", "replaced", e.Replaced)
		case events.Trim:
			logger.Debug("buffer trimmed", "cutoff", e.Cutoff)
		}
	}
}
