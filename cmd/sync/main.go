package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/danbi-analytics/channel-collector-go/internal/config"
	"github.com/danbi-analytics/channel-collector-go/internal/kv"
	"github.com/danbi-analytics/channel-collector-go/internal/service"
	"github.com/danbi-analytics/channel-collector-go/internal/store"
	"github.com/danbi-analytics/channel-collector-go/pkg/logger"
)

func main() {
	delay := flag.Duration("delay", 200*time.Millisecond, "pause between document copies")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		log.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	docStore, err := store.New(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to create document store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	pool, err := kv.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo, err := kv.NewRepository(ctx, pool)
	if err != nil {
		log.Error("failed to initialize kv repository", "error", err)
		os.Exit(1)
	}

	syncer := service.NewSyncer(docStore, repo, *delay)
	result, err := syncer.SyncAll(ctx)
	if err != nil {
		log.Error("sync failed", "error", err)
		os.Exit(1)
	}

	log.Info("sync finished", "synced", result.Synced, "failed", result.Failed)
	if result.Failed > 0 {
		os.Exit(1)
	}
}
