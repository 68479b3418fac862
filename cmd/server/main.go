package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihttp "shopscout/searchservice/internal/api/http"
	"shopscout/searchservice/internal/app"
	"shopscout/searchservice/internal/llm"
	"shopscout/searchservice/internal/metrics"
	"shopscout/searchservice/internal/providers/amazon"
	"shopscout/searchservice/internal/providers/common"
	"shopscout/searchservice/internal/providers/flipkart"
	"shopscout/searchservice/internal/providers/shopsearch"
	"shopscout/searchservice/internal/search"
	"shopscout/searchservice/internal/telemetry"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background())
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "shop-search"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.Duration("requestTimeout", cfg.RequestTimeout),
		slog.String("amazonEndpoint", cfg.AmazonEndpoint),
		slog.String("flipkartEndpoint", cfg.FlipkartEndpoint),
		slog.String("renderServiceURL", strings.TrimSpace(cfg.RenderServiceURL)),
		slog.Bool("hasShopAPIKey", strings.TrimSpace(cfg.ShopAPIKey) != ""),
		slog.Bool("hasLLMKey", strings.TrimSpace(cfg.LLMAPIKey) != ""),
		slog.Bool("hasRedis", strings.TrimSpace(cfg.RedisURL) != ""),
		slog.Duration("cacheTTL", cfg.CacheTTL),
	)

	fetcher := common.NewFetcher(&http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	renderer := common.NewRenderer(common.RendererConfig{
		Endpoint: cfg.RenderServiceURL,
		Client: &http.Client{
			Timeout:   90 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})
	normalizer := buildNormalizer(cfg, logger)

	searchService := search.NewService([]search.Retailer{
		amazon.NewProvider(amazon.Config{
			Endpoint:   cfg.AmazonEndpoint,
			Fetcher:    fetcher,
			Renderer:   renderer,
			Normalizer: normalizer,
		}),
		flipkart.NewProvider(flipkart.Config{
			Endpoint:   cfg.FlipkartEndpoint,
			Fetcher:    fetcher,
			Renderer:   renderer,
			Normalizer: normalizer,
		}),
	}, cfg.RequestTimeout, buildServiceOptions(cfg, logger)...)

	handler := apihttp.NewServer(searchService, apihttp.WithLogger(logger)).Handler()
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * cfg.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("shop search service started",
		slog.String("addr", cfg.HTTPAddr),
		slog.Duration("timeout", cfg.RequestTimeout),
	)

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("shop search service stopped")
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildNormalizer(cfg app.Config, logger *slog.Logger) common.Normalizer {
	if strings.TrimSpace(cfg.LLMAPIKey) == "" && strings.TrimSpace(cfg.LLMFallbackKey) == "" {
		logger.Info("llm api key not configured, llm extraction stage disabled")
		return nil
	}
	client := llm.NewClient(llm.Config{
		APIKey:      cfg.LLMAPIKey,
		FallbackKey: cfg.LLMFallbackKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
	})
	logger.Info("llm normalizer initialized", slog.String("model", cfg.LLMModel))
	return llm.NewNormalizer(client, llm.NewFileCache(cfg.LLMCacheDir))
}

func buildServiceOptions(cfg app.Config, logger *slog.Logger) []search.ServiceOption {
	var opts []search.ServiceOption

	if client := buildShoppingClient(cfg, logger); client != nil {
		opts = append(opts, search.WithShopping(client))
	}

	if cfg.CacheDisabled {
		opts = append(opts, search.WithCacheDisabled(true))
		return opts
	}

	if cfg.CacheTTL > 0 {
		opts = append(opts, search.WithCacheTTL(cfg.CacheTTL))
	}

	redisURL := strings.TrimSpace(cfg.RedisURL)
	if redisURL != "" {
		redisOpts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Warn("invalid redis url, using in-memory cache only", slog.String("error", err.Error()))
			return opts
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable, using in-memory cache only", slog.String("error", err.Error()))
			return opts
		}
		logger.Info("redis connected", slog.String("addr", redisOpts.Addr))
		opts = append(opts, search.WithRedisCache(search.NewRedisCacheBackend(redisClient)))
	}

	return opts
}

func buildShoppingClient(cfg app.Config, logger *slog.Logger) *shopsearch.Client {
	apiKey := strings.TrimSpace(cfg.ShopAPIKey)
	if apiKey == "" {
		logger.Info("shopping api key not configured, shopping mode disabled")
		return nil
	}

	// Reuse Redis for shopping response caching when available.
	var redisClient *redis.Client
	redisURL := strings.TrimSpace(cfg.RedisURL)
	if redisURL != "" {
		if opts, err := redis.ParseURL(redisURL); err == nil {
			redisClient = redis.NewClient(opts)
		}
	}

	client := shopsearch.NewClient(shopsearch.Config{
		APIKey:  apiKey,
		BaseURL: cfg.ShopBaseURL,
		Client: &http.Client{
			Timeout:   20 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Redis:    redisClient,
		CacheTTL: cfg.CacheTTL,
	})
	logger.Info("shopping client initialized", slog.Bool("enabled", client.Enabled()))
	return client
}
