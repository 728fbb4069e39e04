// Package youtube wraps the YouTube Data API v3 for channel statistics
// collection: the per-channel fetch, the shorts scan over recent uploads,
// the recent-thumbnails lookup and channel discovery.
package youtube

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
	"github.com/danbi-analytics/channel-collector-go/internal/registry"
	"github.com/danbi-analytics/channel-collector-go/pkg/logger"
)

// Quota cost per API call, in units of the daily quota.
const (
	CostChannelsList      = 1
	CostPlaylistItemsList = 1
	CostVideosList        = 1
	CostSearchList        = 100
)

// Shorts scan bounds: up to 1000 recent uploads, in pages of 50; a video
// counts as a short when its duration is at most 60 seconds.
const (
	shortsScanLimit     = 1000
	pageSize            = 50
	shortMaxDurationSec = 60

	thumbnailHistorySize = 7
)

// Client wraps the YouTube Data API v3 client.
type Client struct {
	service *youtube.Service
}

// NewClient creates a new YouTube API client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service}, nil
}

// FetchChannel retrieves one channel's static data and raw statistics. The
// requested field set decides which API parts go on the wire; fields whose
// part was not requested stay empty.
func (c *Client) FetchChannel(ctx context.Context, channelID string, fields registry.FieldSet) (*model.StaticData, model.RawSnapshot, error) {
	parts := registry.PartsFor(fields)
	if len(parts) == 0 {
		return nil, model.RawSnapshot{}, fmt.Errorf("no api parts requested for channel %s", channelID)
	}

	var resp *youtube.ChannelListResponse
	err := withRetry(ctx, "channels.list", func() error {
		var callErr error
		resp, callErr = c.service.Channels.List(parts).Id(channelID).Context(ctx).Do()
		return wrapAPIError(callErr, "channels.list")
	})
	if err != nil {
		return nil, model.RawSnapshot{}, err
	}
	if len(resp.Items) == 0 {
		return nil, model.RawSnapshot{}, fmt.Errorf("channel %s: %w", channelID, ErrChannelNotFound)
	}

	ch := resp.Items[0]
	return mapStaticData(ch), mapRawSnapshot(ch), nil
}

func mapStaticData(ch *youtube.Channel) *model.StaticData {
	static := &model.StaticData{}

	if ch.Snippet != nil {
		static.Title = ch.Snippet.Title
		static.Description = ch.Snippet.Description
		static.CustomURL = ch.Snippet.CustomUrl
		static.PublishedAt = ch.Snippet.PublishedAt
		static.Country = ch.Snippet.Country
		static.DefaultLanguage = ch.Snippet.DefaultLanguage

		if t := ch.Snippet.Thumbnails; t != nil {
			static.ThumbnailURL = bestThumbnail(t)
			if t.Default != nil {
				static.ThumbnailDefault = t.Default.Url
			}
			if t.Medium != nil {
				static.ThumbnailMedium = t.Medium.Url
			}
			if t.High != nil {
				static.ThumbnailHigh = t.High.Url
			}
		}
	}

	if b := ch.BrandingSettings; b != nil {
		if b.Channel != nil {
			static.Keywords = b.Channel.Keywords
			static.UnsubscribedTrailer = b.Channel.UnsubscribedTrailer
			if static.Country == "" {
				static.Country = b.Channel.Country
			}
		}
		if b.Image != nil {
			static.BannerExternalURL = b.Image.BannerExternalUrl
		}
	}

	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		static.UploadsPlaylistID = ch.ContentDetails.RelatedPlaylists.Uploads
	}

	if ch.TopicDetails != nil {
		static.TopicIDs = ch.TopicDetails.TopicIds
		static.TopicCategories = ch.TopicDetails.TopicCategories
	}

	if s := ch.Status; s != nil {
		static.PrivacyStatus = s.PrivacyStatus
		static.LongUploadsStatus = s.LongUploadsStatus
		static.IsLinked = boolPtr(s.IsLinked)
		static.MadeForKids = boolPtr(s.MadeForKids)
		static.SelfDeclaredMadeForKids = boolPtr(s.SelfDeclaredMadeForKids)
	}

	return static
}

func mapRawSnapshot(ch *youtube.Channel) model.RawSnapshot {
	var raw model.RawSnapshot
	stats := ch.Statistics
	if stats == nil {
		return raw
	}

	raw.ViewCount = strconv.FormatUint(stats.ViewCount, 10)
	raw.VideoCount = strconv.FormatUint(stats.VideoCount, 10)

	// A hidden subscriber count reports zero on the wire; keep the field
	// absent instead of storing a misleading zero.
	raw.HiddenSubscriberCount = boolPtr(stats.HiddenSubscriberCount)
	if !stats.HiddenSubscriberCount {
		raw.SubscriberCount = strconv.FormatUint(stats.SubscriberCount, 10)
	}
	return raw
}

// FetchShortsAggregate scans the channel's most recent uploads and sums the
// shorts it finds. Returns the count of qualifying videos and their total
// views.
func (c *Client) FetchShortsAggregate(ctx context.Context, uploadsPlaylistID string) (*model.ShortsAggregate, int, error) {
	videoIDs, pageCost, err := c.listRecentVideoIDs(ctx, uploadsPlaylistID, shortsScanLimit)
	if err != nil {
		return nil, pageCost, err
	}

	agg := &model.ShortsAggregate{}
	cost := pageCost

	for start := 0; start < len(videoIDs); start += pageSize {
		end := start + pageSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		batch := videoIDs[start:end]

		var resp *youtube.VideoListResponse
		err := withRetry(ctx, "videos.list", func() error {
			var callErr error
			resp, callErr = c.service.Videos.
				List([]string{"contentDetails", "statistics"}).
				Id(batch...).
				Context(ctx).
				Do()
			return wrapAPIError(callErr, "videos.list")
		})
		cost += CostVideosList
		if err != nil {
			// Quota exhaustion ends the batch; any other failed page is
			// skipped so the channel keeps its partial shorts counts.
			if IsQuotaExceeded(err) || ctx.Err() != nil {
				return nil, cost, err
			}
			logger.Log.Warn("videos batch failed, skipping",
				zap.Int("batchStart", start),
				zap.Error(err),
			)
			continue
		}

		for _, video := range resp.Items {
			if video.ContentDetails == nil {
				continue
			}
			seconds, err := ParseDuration(video.ContentDetails.Duration)
			if err != nil || seconds <= 0 || seconds > shortMaxDurationSec {
				continue
			}
			agg.ShortsCount++
			if video.Statistics != nil {
				agg.TotalShortsViews += int64(video.Statistics.ViewCount)
			}
		}
	}

	return agg, cost, nil
}

// listRecentVideoIDs pages through the uploads playlist, newest first, up to
// the given limit.
func (c *Client) listRecentVideoIDs(ctx context.Context, uploadsPlaylistID string, limit int) ([]string, int, error) {
	var (
		ids       []string
		pageToken string
		cost      int
	)

	for len(ids) < limit {
		var resp *youtube.PlaylistItemListResponse
		err := withRetry(ctx, "playlistItems.list", func() error {
			var callErr error
			resp, callErr = c.service.PlaylistItems.
				List([]string{"contentDetails"}).
				PlaylistId(uploadsPlaylistID).
				MaxResults(pageSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			return wrapAPIError(callErr, "playlistItems.list")
		})
		if err != nil {
			return nil, cost, err
		}
		cost += CostPlaylistItemsList

		for _, item := range resp.Items {
			if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
				ids = append(ids, item.ContentDetails.VideoId)
				if len(ids) == limit {
					break
				}
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return ids, cost, nil
}

// FetchRecentThumbnails returns the channel's most recently published
// videos as {date, url, title}, newest first, best available thumbnail
// quality.
func (c *Client) FetchRecentThumbnails(ctx context.Context, uploadsPlaylistID string) ([]model.ThumbnailEntry, int, error) {
	var resp *youtube.PlaylistItemListResponse
	err := withRetry(ctx, "playlistItems.list", func() error {
		var callErr error
		resp, callErr = c.service.PlaylistItems.
			List([]string{"snippet"}).
			PlaylistId(uploadsPlaylistID).
			MaxResults(thumbnailHistorySize).
			Context(ctx).
			Do()
		return wrapAPIError(callErr, "playlistItems.list")
	})
	if err != nil {
		return nil, 0, err
	}

	entries := make([]model.ThumbnailEntry, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		entries = append(entries, model.ThumbnailEntry{
			Date:  item.Snippet.PublishedAt,
			URL:   bestThumbnail(item.Snippet.Thumbnails),
			Title: item.Snippet.Title,
		})
	}

	// The uploads playlist is already newest first, but a re-ordered
	// playlist must not scramble the persisted history.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	if len(entries) > thumbnailHistorySize {
		entries = entries[:thumbnailHistorySize]
	}
	return entries, CostPlaylistItemsList, nil
}

// bestThumbnail returns the highest-quality thumbnail URL available.
func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	switch {
	case t.Maxres != nil:
		return t.Maxres.Url
	case t.Standard != nil:
		return t.Standard.Url
	case t.High != nil:
		return t.High.Url
	case t.Medium != nil:
		return t.Medium.Url
	case t.Default != nil:
		return t.Default.Url
	}
	return ""
}

func boolPtr(b bool) *bool {
	return &b
}
