package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/danbi-analytics/channel-collector-go/internal/config"
	"github.com/danbi-analytics/channel-collector-go/internal/service"
	"github.com/danbi-analytics/channel-collector-go/internal/service/quota"
	"github.com/danbi-analytics/channel-collector-go/internal/store"
	"github.com/danbi-analytics/channel-collector-go/internal/youtube"
	"github.com/danbi-analytics/channel-collector-go/pkg/logger"
)

func main() {
	var (
		channelList    = flag.String("channels", "", "comma-separated channel ids to collect")
		channelsFile   = flag.String("channels-file", "", "file with one channel id per line")
		discoverQuery  = flag.String("discover", "", "search for channels matching this query instead of collecting")
		maxSubscribers = flag.Int64("max-subscribers", 0, "subscriber ceiling for -discover (0 = no limit)")
		discoverSort   = flag.String("discover-sort", youtube.SortByViews, "order for -discover results: views (desc) or videos (asc)")
		resolveHandle  = flag.String("resolve", "", "resolve an @handle to a channel id and exit")
		skipThumbnails = flag.Bool("skip-thumbnails", false, "skip the recent-thumbnails fetch")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	// .env is a developer convenience; absence is normal in production.
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
	if err != nil {
		log.Error("failed to create youtube client", "error", err)
		os.Exit(1)
	}

	quotaManager := quota.NewManager(cfg.YouTube.DailyQuota, cfg.YouTube.ThresholdPercent)

	switch {
	case *resolveHandle != "":
		channelID, cost, err := client.ResolveHandle(ctx, *resolveHandle)
		quotaManager.Record(cost, "channels_list")
		if err != nil {
			log.Error("handle resolution failed", "handle", *resolveHandle, "error", err)
			os.Exit(1)
		}
		fmt.Println(channelID)
		return

	case *discoverQuery != "":
		// Channels already in the index are not candidates again.
		var exclude []string
		if docStore, storeErr := store.New(ctx, cfg.Storage); storeErr == nil {
			if index, indexErr := store.ReadIndex(ctx, docStore); indexErr == nil {
				for _, entry := range index.Channels {
					exclude = append(exclude, entry.ChannelID)
				}
			}
		}

		found, cost, err := client.FindChannels(ctx, *discoverQuery, youtube.SearchOptions{
			MaxSubscribers: *maxSubscribers,
			SortBy:         *discoverSort,
			ExcludeIDs:     exclude,
			Limit:          50,
		})
		quotaManager.Record(cost, "search_list")
		if err != nil {
			log.Error("channel discovery failed", "query", *discoverQuery, "error", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(found, "", "  ")
		fmt.Println(string(out))
		return
	}

	channelIDs, err := resolveChannelIDs(*channelList, *channelsFile)
	if err != nil {
		log.Error("failed to read channel list", "error", err)
		os.Exit(1)
	}
	if len(channelIDs) == 0 {
		log.Error("no channels given; use -channels, -channels-file, -discover or -resolve")
		os.Exit(1)
	}

	docStore, err := store.New(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to create document store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	collector := service.NewCollector(client, docStore, quotaManager, service.Options{
		ChannelDelay:   cfg.Batch.ChannelDelay,
		ProgressFile:   cfg.Batch.ProgressFile,
		SkipThumbnails: *skipThumbnails,
	})

	// First signal stops at the next channel boundary; the second kills the
	// process the hard way.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		log.Info("shutdown signal received, stopping at next channel")
		collector.Stop()
		<-shutdown
		log.Error("second signal received, aborting")
		os.Exit(1)
	}()

	log.Info("collection starting",
		"channels", len(channelIDs),
		"storage", cfg.Storage.Backend,
		"quota_remaining", quotaManager.Remaining(),
	)

	result, err := collector.Run(ctx, channelIDs)
	if err != nil && !errors.Is(err, service.ErrStopped) {
		log.Error("batch ended early",
			"error", err,
			"processed", result.Processed,
			"succeeded", result.Succeeded,
			"skipped", result.Skipped,
		)
		os.Exit(1)
	}

	log.Info("collection finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"skipped", result.Skipped,
		"quota_used", result.QuotaUsed,
	)
}

func resolveChannelIDs(channelList, channelsFile string) ([]string, error) {
	var ids []string

	for _, id := range strings.Split(channelList, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	if channelsFile != "" {
		f, err := os.Open(channelsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				ids = append(ids, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	return ids, nil
}
