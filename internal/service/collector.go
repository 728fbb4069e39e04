// Package service orchestrates channel collection: quota-checked fetching,
// metric computation, history merging, validation and persistence, strictly
// one channel at a time.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/danbi-analytics/channel-collector-go/internal/analytics"
	"github.com/danbi-analytics/channel-collector-go/internal/history"
	"github.com/danbi-analytics/channel-collector-go/internal/model"
	"github.com/danbi-analytics/channel-collector-go/internal/registry"
	"github.com/danbi-analytics/channel-collector-go/internal/service/quota"
	"github.com/danbi-analytics/channel-collector-go/internal/store"
	"github.com/danbi-analytics/channel-collector-go/internal/validation"
	"github.com/danbi-analytics/channel-collector-go/internal/youtube"
	"github.com/danbi-analytics/channel-collector-go/pkg/logger"
)

// ErrQuotaExhausted stops a batch when the quota threshold is reached.
// Unlike per-channel failures this is terminal for the whole run.
var ErrQuotaExhausted = errors.New("quota threshold reached, batch stopped")

// ErrStopped is returned when the batch was stopped via Stop.
var ErrStopped = errors.New("batch stopped")

// Fetcher is the upstream API surface the collector depends on.
type Fetcher interface {
	FetchChannel(ctx context.Context, channelID string, fields registry.FieldSet) (*model.StaticData, model.RawSnapshot, error)
	FetchShortsAggregate(ctx context.Context, uploadsPlaylistID string) (*model.ShortsAggregate, int, error)
	FetchRecentThumbnails(ctx context.Context, uploadsPlaylistID string) ([]model.ThumbnailEntry, int, error)
}

// Result summarizes a batch run.
type Result struct {
	Processed int
	Succeeded int
	Skipped   int
	QuotaUsed int
}

// Options configures a Collector.
type Options struct {
	// Fields selects what to collect. Defaults to every registered field.
	Fields registry.FieldSet

	// ChannelDelay paces quota consumption between channels.
	ChannelDelay time.Duration

	// ProgressFile, when set, receives a checkpoint after every channel.
	ProgressFile string

	// SkipThumbnails disables the recent-thumbnails fetch.
	SkipThumbnails bool
}

// Collector runs collection batches. Channels are processed strictly
// sequentially; the document store sees at most one writer because of that
// sequencing, not because of any lock.
type Collector struct {
	fetcher Fetcher
	store   store.DocumentStore
	quota   *quota.Manager
	opts    Options
	limiter *rate.Limiter

	paused  atomic.Bool
	stopped atomic.Bool

	now func() time.Time
}

// NewCollector creates a collector over the given fetcher and store.
func NewCollector(fetcher Fetcher, docStore store.DocumentStore, quotaManager *quota.Manager, opts Options) *Collector {
	if opts.Fields == nil {
		opts.Fields = registry.AllFields()
	}
	if opts.ChannelDelay <= 0 {
		opts.ChannelDelay = time.Second
	}

	return &Collector{
		fetcher: fetcher,
		store:   docStore,
		quota:   quotaManager,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.ChannelDelay), 1),
		now:     time.Now,
	}
}

// Pause suspends processing at the next channel boundary. In-flight calls
// for the current channel finish normally.
func (c *Collector) Pause() { c.paused.Store(true) }

// Resume continues a paused batch.
func (c *Collector) Resume() { c.paused.Store(false) }

// Stop ends the batch at the next channel boundary.
func (c *Collector) Stop() { c.stopped.Store(true) }

// Run processes the given channels in order. Per-channel failures are
// logged and skipped; quota exhaustion and persistence failures stop the
// batch with its partial Result.
func (c *Collector) Run(ctx context.Context, channelIDs []string) (*Result, error) {
	runID := uuid.NewString()
	log := logger.Log.With(zap.String("runId", runID))

	log.Info("batch started",
		zap.Int("channels", len(channelIDs)),
		zap.Int("quotaRemaining", c.quota.Remaining()),
	)

	result := &Result{}
	startQuota := c.quota.Used()

	for i, channelID := range channelIDs {
		if err := c.waitAtBoundary(ctx); err != nil {
			result.QuotaUsed = c.quota.Used() - startQuota
			return result, err
		}

		if !c.quota.CheckAvailable(c.estimatedChannelCost()) {
			c.checkpoint(result.Processed, len(channelIDs))
			result.QuotaUsed = c.quota.Used() - startQuota
			return result, ErrQuotaExhausted
		}

		err := c.processChannel(ctx, log, channelID)
		result.Processed++

		switch {
		case err == nil:
			result.Succeeded++
		case youtube.IsQuotaExceeded(err):
			log.Error("api quota exceeded, stopping batch",
				zap.String("channelId", channelID), zap.Error(err))
			c.checkpoint(result.Processed, len(channelIDs))
			result.QuotaUsed = c.quota.Used() - startQuota
			return result, ErrQuotaExhausted
		case isPersistenceError(err):
			log.Error("persistence failed, stopping batch",
				zap.String("channelId", channelID), zap.Error(err))
			c.checkpoint(result.Processed, len(channelIDs))
			result.QuotaUsed = c.quota.Used() - startQuota
			return result, err
		default:
			result.Skipped++
			log.Warn("channel skipped",
				zap.String("channelId", channelID), zap.Error(err))
		}

		c.checkpoint(result.Processed, len(channelIDs))

		if i < len(channelIDs)-1 {
			if err := c.limiter.Wait(ctx); err != nil {
				result.QuotaUsed = c.quota.Used() - startQuota
				return result, err
			}
		}
	}

	result.QuotaUsed = c.quota.Used() - startQuota
	log.Info("batch finished",
		zap.Int("processed", result.Processed),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("skipped", result.Skipped),
		zap.Int("quotaUsed", result.QuotaUsed),
	)
	return result, nil
}

// waitAtBoundary honors pause/stop between channels. Cancellation is
// cooperative; nothing in flight is aborted.
func (c *Collector) waitAtBoundary(ctx context.Context) error {
	for {
		if c.stopped.Load() {
			return ErrStopped
		}
		if !c.paused.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// estimatedChannelCost is the worst-case quota cost of one channel: the
// channel fetch, a full shorts scan (20 playlist pages + 20 video batches)
// and the thumbnails lookup.
func (c *Collector) estimatedChannelCost() int {
	cost := youtube.CostChannelsList
	if c.needsShorts() {
		cost += 40 * youtube.CostPlaylistItemsList
	}
	if !c.opts.SkipThumbnails {
		cost += youtube.CostPlaylistItemsList
	}
	return cost
}

func (c *Collector) needsShorts() bool {
	for _, id := range []string{
		"shortsCount", "longformCount", "totalShortsDuration",
		"estimatedShortsViews", "shortsViewsPercentage",
		"estimatedLongformViews", "longformViewsPercentage",
	} {
		if c.opts.Fields.Has(id) {
			return true
		}
	}
	return false
}

func (c *Collector) processChannel(ctx context.Context, log *zap.Logger, channelID string) error {
	now := c.now()

	static, raw, err := c.fetcher.FetchChannel(ctx, channelID, c.opts.Fields)
	if err != nil {
		return err
	}
	c.quota.Record(youtube.CostChannelsList, "channels_list")

	var shorts *model.ShortsAggregate
	if c.needsShorts() && static.UploadsPlaylistID != "" {
		agg, cost, err := c.fetcher.FetchShortsAggregate(ctx, static.UploadsPlaylistID)
		c.quota.Record(cost, "shorts_scan")
		if err != nil {
			if youtube.IsQuotaExceeded(err) {
				return err
			}
			// Shorts metrics will be missing and validation decides the
			// outcome; the fetch failure itself is not fatal here.
			log.Warn("shorts scan failed",
				zap.String("channelId", channelID), zap.Error(err))
		} else {
			shorts = agg
		}
	}

	var thumbnails []model.ThumbnailEntry
	if !c.opts.SkipThumbnails && static.UploadsPlaylistID != "" {
		entries, cost, err := c.fetcher.FetchRecentThumbnails(ctx, static.UploadsPlaylistID)
		c.quota.Record(cost, "thumbnails")
		if err != nil {
			if youtube.IsQuotaExceeded(err) {
				return err
			}
			log.Warn("thumbnails fetch failed",
				zap.String("channelId", channelID), zap.Error(err))
		} else {
			thumbnails = entries
		}
	}

	// Any trouble reading prior state degrades to fresh-seed histories
	// rather than aborting the channel.
	prior, err := store.ReadDocument(ctx, c.store, channelID)
	if err != nil && !store.IsNotFound(err) {
		log.Warn("prior document unreadable, starting fresh histories",
			zap.String("channelId", channelID), zap.Error(err))
		prior = nil
	}

	publishedAt := static.PublishedAtTime()
	if publishedAt == nil && prior != nil && prior.StaticData != nil {
		if t, parseErr := time.Parse(time.RFC3339, prior.StaticData.PublishedAt); parseErr == nil {
			publishedAt = &t
		}
	}

	snap, err := analytics.Compute(raw, publishedAt, shorts, c.opts.Fields, now)
	if err != nil {
		return fmt.Errorf("channel %s: %w", channelID, err)
	}

	if analytics.Correct(snap) {
		log.Info("view share correction applied", zap.String("channelId", channelID))
	}

	if err := validation.Validate(static, snap); err != nil {
		var missing *validation.MissingFieldsError
		if errors.As(err, &missing) {
			log.Warn("validation failed, skipping persistence",
				zap.String("channelId", channelID),
				zap.Int("missingStatic", len(missing.Static)),
				zap.Int("missingSnapshot", len(missing.Snapshot)),
				zap.Int("missingDerived", len(missing.Derived)),
			)
		}
		return err
	}

	daily := history.MergeDaily(prior, raw.ViewCount, now)
	weekly := history.MergeWeekly(prior, raw.ViewCount, now)
	subscribers := priorSubscriberHistory(prior)
	if raw.SubscriberCount != "" {
		subscribers = history.MergeSubscribers(prior, raw.SubscriberCount, now)
	}

	doc := store.MergeDocument(prior, channelID, static, snap, daily, weekly, subscribers, thumbnails, now)
	if err := store.WriteDocument(ctx, c.store, doc); err != nil {
		return &persistenceError{err: err}
	}

	c.updateIndex(ctx, log, doc, now)

	log.Info("channel collected",
		zap.String("channelId", channelID),
		zap.String("title", static.Title),
		zap.Int("collections", doc.Metadata.TotalCollections),
	)
	return nil
}

// updateIndex keeps the channel index in sync, best-effort: an index
// failure is logged but never rolls back the channel write.
func (c *Collector) updateIndex(ctx context.Context, log *zap.Logger, doc *model.ChannelDocument, now time.Time) {
	index, err := store.ReadIndex(ctx, c.store)
	if err != nil {
		log.Warn("index read failed", zap.String("channelId", doc.ChannelID), zap.Error(err))
		return
	}
	store.UpsertIndexEntry(index, doc, now)
	if err := store.WriteIndex(ctx, c.store, index); err != nil {
		log.Warn("index write failed", zap.String("channelId", doc.ChannelID), zap.Error(err))
	}
}

// checkpoint writes batch progress so an interrupted run can resume.
func (c *Collector) checkpoint(completed, total int) {
	if c.opts.ProgressFile == "" {
		return
	}

	progress := model.BatchProgress{
		Completed:   completed,
		Total:       total,
		LastUpdated: c.now().UTC().Format(time.RFC3339),
	}
	content, err := json.Marshal(&progress)
	if err == nil {
		err = os.WriteFile(c.opts.ProgressFile, content, 0o644)
	}
	if err != nil {
		logger.Log.Warn("progress checkpoint failed",
			zap.String("file", c.opts.ProgressFile), zap.Error(err))
	}
}

func priorSubscriberHistory(prior *model.ChannelDocument) []model.SubscriberEntry {
	if prior == nil {
		return nil
	}
	return prior.SubscriberHistory
}

// persistenceError marks a failed document write, which is fatal for the
// whole batch: an unreachable sink would fail every later channel too.
type persistenceError struct {
	err error
}

func (e *persistenceError) Error() string { return "persist document: " + e.err.Error() }
func (e *persistenceError) Unwrap() error { return e.err }

func isPersistenceError(err error) bool {
	var pe *persistenceError
	return errors.As(err, &pe)
}
