package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pauljones0/listing-watch-bot/internal/config"
	"github.com/pauljones0/listing-watch-bot/internal/detector"
	"github.com/pauljones0/listing-watch-bot/internal/notifier"
	"github.com/pauljones0/listing-watch-bot/internal/processor"
	"github.com/pauljones0/listing-watch-bot/internal/scraper"
	"github.com/pauljones0/listing-watch-bot/internal/storage"
)

const (
	exitOK      = 0
	exitStartup = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		slog.Error("Critical error loading env file", "error", err)
		return exitStartup
	}

	opts, err := config.ParseOptions(args)
	if err != nil {
		slog.Error("Invalid options", "error", err)
		return exitUsage
	}
	if opts == nil {
		return exitOK
	}
	slog.SetDefault(newLogger(opts.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting listing watcher", "config", opts.ConfigPath, "fetch_mode", opts.FetchMode, "state_backend", opts.StateBackend)
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		return exitStartup
	}

	selectors, err := scraper.LoadConfig(opts.SelectorsPath)
	if err != nil {
		slog.Error("Critical error loading selectors", "error", err)
		return exitStartup
	}

	store, closeStore, err := newStore(ctx, opts)
	if err != nil {
		slog.Error("Critical error initializing state store", "error", err)
		return exitStartup
	}
	defer closeStore()

	n, err := notifier.New(cfg.Telegram.APIToken, cfg.Telegram.ChatID)
	if err != nil {
		slog.Error("Critical error initializing Telegram client", "error", err)
		return exitStartup
	}

	p := processor.New(
		newFetcher(opts),
		scraper.NewExtractor(selectors),
		detector.New(store, detector.NewFileMarker(opts.MarkerPath)),
		n,
		opts.Concurrency,
	)

	start := time.Now()
	results := p.Run(ctx, cfg.Topics)
	logSummary(results, time.Since(start))
	return exitOK
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newStore(ctx context.Context, opts *config.Options) (storage.SeenStore, func(), error) {
	switch opts.StateBackend {
	case "firestore":
		fs, err := storage.NewFirestore(ctx, opts.ProjectID, opts.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {
			if err := fs.Close(); err != nil {
				slog.Warn("Failed to close Firestore client", "error", err)
			}
		}, nil
	case "redis":
		rs, err := storage.NewRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() {
			if err := rs.Close(); err != nil {
				slog.Warn("Failed to close Redis client", "error", err)
			}
		}, nil
	case "file", "":
		if err := os.MkdirAll(opts.StateDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create state dir: %w", err)
		}
		return storage.NewFileStore(opts.StateDir), func() {}, nil
	default:
		return nil, nil, errors.New("unknown state backend " + opts.StateBackend)
	}
}

func newFetcher(opts *config.Options) processor.PageFetcher {
	fetchOpts := scraper.FetchOptions{MaxRetries: opts.MaxRetries, MaxElapsed: opts.FetchTimeout}
	if opts.FetchMode == "browser" {
		return scraper.NewBrowserFetcher(fetchOpts)
	}
	return scraper.NewFetcher(nil, fetchOpts)
}

func logSummary(results []processor.Result, elapsed time.Duration) {
	var failed, fresh int
	for _, r := range results {
		fresh += r.NewAds
		if r.Failed() {
			failed++
		}
	}
	slog.Info("Run finished", "topics", len(results), "failed", failed, "new_ads", fresh, "duration", elapsed)
}
