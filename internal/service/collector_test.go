package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
	"github.com/danbi-analytics/channel-collector-go/internal/registry"
	"github.com/danbi-analytics/channel-collector-go/internal/service/quota"
	"github.com/danbi-analytics/channel-collector-go/internal/store"
	"github.com/danbi-analytics/channel-collector-go/internal/youtube"
)

type fakeChannel struct {
	static *model.StaticData
	raw    model.RawSnapshot
	shorts *model.ShortsAggregate
	thumbs []model.ThumbnailEntry
	err    error
}

type fakeFetcher struct {
	channels map[string]fakeChannel
	fetched  []string
}

func (f *fakeFetcher) FetchChannel(_ context.Context, channelID string, _ registry.FieldSet) (*model.StaticData, model.RawSnapshot, error) {
	f.fetched = append(f.fetched, channelID)
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, model.RawSnapshot{}, fmt.Errorf("channel %s: %w", channelID, youtube.ErrChannelNotFound)
	}
	if ch.err != nil {
		return nil, model.RawSnapshot{}, ch.err
	}
	return ch.static, ch.raw, nil
}

func (f *fakeFetcher) FetchShortsAggregate(_ context.Context, uploadsPlaylistID string) (*model.ShortsAggregate, int, error) {
	for _, ch := range f.channels {
		if ch.static != nil && ch.static.UploadsPlaylistID == uploadsPlaylistID {
			return ch.shorts, 2, nil
		}
	}
	return nil, 0, errors.New("unknown playlist")
}

func (f *fakeFetcher) FetchRecentThumbnails(_ context.Context, uploadsPlaylistID string) ([]model.ThumbnailEntry, int, error) {
	for _, ch := range f.channels {
		if ch.static != nil && ch.static.UploadsPlaylistID == uploadsPlaylistID {
			return ch.thumbs, 1, nil
		}
	}
	return nil, 0, errors.New("unknown playlist")
}

func healthyChannel(id string) fakeChannel {
	return fakeChannel{
		static: &model.StaticData{
			Title:             "Channel " + id,
			CustomURL:         "@" + id,
			Country:           "KR",
			PublishedAt:       "2020-01-01T00:00:00Z",
			ThumbnailDefault:  "https://example.com/" + id + ".jpg",
			UploadsPlaylistID: "UU" + id,
		},
		raw: model.RawSnapshot{
			SubscriberCount: "10000",
			ViewCount:       "2000000",
			VideoCount:      "200",
		},
		shorts: &model.ShortsAggregate{ShortsCount: 50, TotalShortsViews: 500000},
		thumbs: []model.ThumbnailEntry{
			{Date: "2025-06-09T00:00:00Z", URL: "https://example.com/v1.jpg", Title: "latest"},
		},
	}
}

func newTestCollector(t *testing.T, fetcher *fakeFetcher, s store.DocumentStore, opts Options) *Collector {
	t.Helper()
	if opts.ChannelDelay == 0 {
		opts.ChannelDelay = time.Millisecond
	}
	c := NewCollector(fetcher, s, quota.NewManager(10000, 90), opts)
	c.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	return c
}

func TestCollector_Run(t *testing.T) {
	fetcher := &fakeFetcher{channels: map[string]fakeChannel{"UC1": healthyChannel("UC1")}}
	memStore := store.NewMemoryStore()
	c := newTestCollector(t, fetcher, memStore, Options{})

	result, err := c.Run(context.Background(), []string{"UC1"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Succeeded)
	assert.Zero(t, result.Skipped)
	assert.Positive(t, result.QuotaUsed)

	doc, err := store.ReadDocument(context.Background(), memStore, "UC1")
	require.NoError(t, err)
	require.Len(t, doc.Snapshots, 1)

	snap := doc.Snapshots[0]
	assert.Equal(t, "Channel UC1", snap.Title)
	assert.Equal(t, "2000000", snap.ViewCount)
	require.NotNil(t, snap.Gavg)
	assert.Equal(t, 10000.0, *snap.Gavg)
	require.NotNil(t, snap.Csct)
	assert.Equal(t, 50.0, *snap.Csct)

	require.Len(t, doc.DailyViewsHistory, 1)
	assert.Equal(t, "2025-06-10", doc.DailyViewsHistory[0].Date)
	require.Len(t, doc.SubscriberHistory, 1)
	assert.Equal(t, "2025-06", doc.SubscriberHistory[0].Month)
	require.Len(t, doc.RecentThumbnailsHistory, 1)

	assert.Equal(t, 1, doc.Metadata.TotalCollections)

	index, err := store.ReadIndex(context.Background(), memStore)
	require.NoError(t, err)
	assert.Equal(t, 1, index.TotalChannels)
	assert.Equal(t, "Channel UC1", index.Channels[0].Title)
}

func TestCollector_SecondRunAccumulates(t *testing.T) {
	fetcher := &fakeFetcher{channels: map[string]fakeChannel{"UC1": healthyChannel("UC1")}}
	memStore := store.NewMemoryStore()
	c := newTestCollector(t, fetcher, memStore, Options{})

	_, err := c.Run(context.Background(), []string{"UC1"})
	require.NoError(t, err)

	// Next day, views grew.
	c.now = func() time.Time { return time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC) }
	ch := fetcher.channels["UC1"]
	ch.raw.ViewCount = "2100000"
	fetcher.channels["UC1"] = ch

	_, err = c.Run(context.Background(), []string{"UC1"})
	require.NoError(t, err)

	doc, err := store.ReadDocument(context.Background(), memStore, "UC1")
	require.NoError(t, err)

	assert.Equal(t, 2, doc.Metadata.TotalCollections)
	assert.Equal(t, "2025-06-10T09:00:00Z", doc.Metadata.FirstCollected)

	require.Len(t, doc.Snapshots, 1) // replaced, not appended
	require.Len(t, doc.DailyViewsHistory, 2)
	assert.Equal(t, "2025-06-11", doc.DailyViewsHistory[0].Date)
	assert.Equal(t, "100000", doc.DailyViewsHistory[0].DailyIncrease)
	require.Len(t, doc.SubscriberHistory, 1) // same month, overwritten
}

func TestCollector_NotFoundChannelIsSkipped(t *testing.T) {
	fetcher := &fakeFetcher{channels: map[string]fakeChannel{
		"UC1": healthyChannel("UC1"),
		"UC3": healthyChannel("UC3"),
	}}
	memStore := store.NewMemoryStore()
	c := newTestCollector(t, fetcher, memStore, Options{})

	result, err := c.Run(context.Background(), []string{"UC1", "UC2", "UC3"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Skipped)

	// The batch kept going past the failure.
	assert.Equal(t, []string{"UC1", "UC2", "UC3"}, fetcher.fetched)
}

func TestCollector_CrawlArtifactSkipsPersistence(t *testing.T) {
	ch := healthyChannel("UC1")
	ch.raw = model.RawSnapshot{SubscriberCount: "100", ViewCount: "0", VideoCount: "0"}

	fetcher := &fakeFetcher{channels: map[string]fakeChannel{"UC1": ch}}
	memStore := store.NewMemoryStore()
	c := newTestCollector(t, fetcher, memStore, Options{})

	result, err := c.Run(context.Background(), []string{"UC1"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, memStore.Len())
}

func TestCollector_ValidationFailureSkipsPersistence(t *testing.T) {
	ch := healthyChannel("UC1")
	ch.static.UploadsPlaylistID = "" // also suppresses shorts metrics

	fetcher := &fakeFetcher{channels: map[string]fakeChannel{"UC1": ch}}
	memStore := store.NewMemoryStore()
	c := newTestCollector(t, fetcher, memStore, Options{})

	result, err := c.Run(context.Background(), []string{"UC1"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, memStore.Len())
}

func TestCollector_QuotaExceededStopsBatch(t *testing.T) {
	fetcher := &fakeFetcher{channels: map[string]fakeChannel{
		"UC1": {err: fmt.Errorf("channels.list: %w", youtube.ErrQuotaExceeded)},
		"UC2": healthyChannel("UC2"),
	}}
	memStore := store.NewMemoryStore()
	c := newTestCollector(t, fetcher, memStore, Options{})

	result, err := c.Run(context.Background(), []string{"UC1", "UC2"})
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Equal(t, 1, result.Processed)
	assert.NotContains(t, fetcher.fetched, "UC2")
}

func TestCollector_StopEndsBatchAtBoundary(t *testing.T) {
	fetcher := &fakeFetcher{channels: map[string]fakeChannel{"UC1": healthyChannel("UC1")}}
	c := newTestCollector(t, fetcher, store.NewMemoryStore(), Options{})
	c.Stop()

	result, err := c.Run(context.Background(), []string{"UC1"})
	assert.ErrorIs(t, err, ErrStopped)
	assert.Zero(t, result.Processed)
	assert.Empty(t, fetcher.fetched)
}

func TestCollector_WritesProgressCheckpoint(t *testing.T) {
	progressFile := filepath.Join(t.TempDir(), "progress.json")

	fetcher := &fakeFetcher{channels: map[string]fakeChannel{"UC1": healthyChannel("UC1")}}
	c := newTestCollector(t, fetcher, store.NewMemoryStore(), Options{ProgressFile: progressFile})

	_, err := c.Run(context.Background(), []string{"UC1"})
	require.NoError(t, err)

	content, err := os.ReadFile(progressFile)
	require.NoError(t, err)

	var progress model.BatchProgress
	require.NoError(t, json.Unmarshal(content, &progress))
	assert.Equal(t, 1, progress.Completed)
	assert.Equal(t, 1, progress.Total)
	assert.Equal(t, "2025-06-10T09:00:00Z", progress.LastUpdated)
}
