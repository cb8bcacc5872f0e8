package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/user/sitesimilarity/internal/api"
	"github.com/user/sitesimilarity/internal/cache"
	"github.com/user/sitesimilarity/internal/config"
	"github.com/user/sitesimilarity/internal/engine"
	"github.com/user/sitesimilarity/internal/fetcher"
	"github.com/user/sitesimilarity/internal/input"
	"github.com/user/sitesimilarity/internal/monitoring"
	"github.com/user/sitesimilarity/internal/proxy"
	"github.com/user/sitesimilarity/internal/similarity"
	"github.com/user/sitesimilarity/internal/sink"
	"github.com/user/sitesimilarity/internal/storage"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Load configuration
	cfg, err := config.Load(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n%s\n", err, config.Usage)
		return 1
	}

	// Matches and debug traces share stdout; one lock keeps their lines whole.
	out := zapcore.Lock(zapcore.AddSync(stdout))
	logger := newLogger(cfg.Debug, out, stderr)
	defer logger.Sync()

	// Read both lists before doing any network work
	list1, err := input.ReadLines(cfg.File1)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	list2, err := input.ReadLines(cfg.File2)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger.Debug("debug mode: printing all operations")
	logger.Debug(fmt.Sprintf("comparing with threshold %v using %d threads", cfg.Threshold, cfg.Workers),
		zap.String("fetch_mode", cfg.FetchMode),
		zap.String("metric", cfg.Metric),
		zap.Bool("text_only", cfg.TextOnly),
	)

	ctx := context.Background()

	// Initialize Fetcher
	proxyManager, err := proxy.NewManager(cfg.UserAgent, cfg.ProxyList())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	var pageFetcher fetcher.Fetcher
	switch cfg.FetchMode {
	case config.FetchModeBrowser:
		bf, err := fetcher.NewBrowserFetcher(fetcher.BrowserOptions{
			Timeout:         cfg.Timeout(),
			IgnoreTLSErrors: cfg.IgnoreTLSErrors,
			UserAgent:       proxyManager.GetUserAgent(),
		})
		if err != nil {
			logger.Error("could not start browser", zap.Error(err))
			return 1
		}
		defer bf.Close()
		pageFetcher = bf
	default:
		pageFetcher = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:         cfg.Timeout(),
			IgnoreTLSErrors: cfg.IgnoreTLSErrors,
			MaxBodyBytes:    cfg.MaxBodyBytes,
			Proxies:         proxyManager,
		})
	}
	if cfg.TextOnly {
		pageFetcher = fetcher.TextOnly{Next: pageFetcher}
	}

	scorer, err := similarity.New(cfg.Metric)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Initialize Monitoring, Cache
	metrics := monitoring.NewMetrics()
	pageCache := cache.New(pageFetcher, logger, metrics)

	// Initialize Sinks
	recorder := sink.NewRecorder()
	sinks := sink.Multi{sink.NewConsole(out), recorder}
	deps := map[string]api.Pinger{}

	if cfg.RedisAddr != "" {
		redisStore := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisChannel)
		defer redisStore.Close()
		if err := redisStore.Ping(ctx); err != nil {
			logger.Error("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			return 1
		}
		sinks = append(sinks, redisStore)
		deps["redis"] = redisStore
	}
	if cfg.PostgresURL != "" {
		pgStore, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Error("failed to connect to postgres", zap.Error(err))
			return 1
		}
		defer pgStore.Close()
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare postgres schema", zap.Error(err))
			return 1
		}
		sinks = append(sinks, pgStore)
		deps["postgres"] = pgStore
	}

	// Initialize Core Engine
	comparisons, err := engine.New(pageCache, scorer, sinks, engine.Options{
		Threshold: cfg.Threshold,
		Workers:   cfg.Workers,
	}, metrics, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// Initialize Status Server
	var server *api.Server
	if cfg.StatusAddr != "" {
		server = api.NewServer(cfg.StatusAddr, comparisons, pageCache, recorder, metrics, deps, logger)
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("status server stopped", zap.Error(err))
			}
		}()
		logger.Info("status server started", zap.String("addr", cfg.StatusAddr))
	}

	comparisons.Run(ctx, list1, list2)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("status server forced to shutdown", zap.Error(err))
		}
	}
	return 0
}

// newLogger traces to stdout at debug level when debugging; otherwise only
// warnings and errors reach stderr so stdout carries nothing but matches.
func newLogger(debug bool, stdout zapcore.WriteSyncer, stderr io.Writer) *zap.Logger {
	if debug {
		encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		core := zapcore.NewCore(encoder, stdout, zapcore.DebugLevel)
		return zap.New(core)
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(stderr)), zapcore.WarnLevel)
	return zap.New(core)
}
