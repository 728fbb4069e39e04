package youtube

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/api/youtube/v3"
)

// Sort orders for discovery results.
const (
	SortByViews  = "views"  // total view count, descending
	SortByVideos = "videos" // video count, ascending
)

// SearchOptions narrows and orders a channel search.
//
// MaxSubscribers of zero disables the subscriber ceiling. ExcludeIDs are
// dropped before the stats lookup, typically the ids already present in the
// channel index. SortBy defaults to SortByViews.
type SearchOptions struct {
	MaxSubscribers int64
	SortBy         string
	ExcludeIDs     []string
	Limit          int
}

// DiscoveredChannel is one candidate from a keyword search, carrying just
// enough to decide whether to add it to the collection list.
type DiscoveredChannel struct {
	ChannelID       string `json:"channelId"`
	Title           string `json:"title"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	SubscriberCount int64  `json:"subscriberCount"`
	ViewCount       int64  `json:"viewCount"`
	VideoCount      int64  `json:"videoCount"`
}

// FindChannels searches for channels matching the query, drops excluded and
// over-ceiling channels and orders the rest per opts.SortBy. The search call
// alone costs 100 quota units.
func (c *Client) FindChannels(ctx context.Context, query string, opts SearchOptions) ([]DiscoveredChannel, int, error) {
	limit := opts.Limit
	if limit <= 0 || limit > pageSize {
		limit = pageSize
	}

	var searchResp *youtube.SearchListResponse
	err := withRetry(ctx, "search.list", func() error {
		var callErr error
		searchResp, callErr = c.service.Search.
			List([]string{"snippet"}).
			Q(query).
			Type("channel").
			MaxResults(int64(limit)).
			Context(ctx).
			Do()
		return wrapAPIError(callErr, "search.list")
	})
	if err != nil {
		return nil, 0, err
	}
	cost := CostSearchList

	excluded := make(map[string]bool, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		excluded[id] = true
	}

	var ids []string
	for _, item := range searchResp.Items {
		if item.Id != nil && item.Id.ChannelId != "" && !excluded[item.Id.ChannelId] {
			ids = append(ids, item.Id.ChannelId)
		}
	}
	if len(ids) == 0 {
		return nil, cost, nil
	}

	var chanResp *youtube.ChannelListResponse
	err = withRetry(ctx, "channels.list", func() error {
		var callErr error
		chanResp, callErr = c.service.Channels.
			List([]string{"snippet", "statistics"}).
			Id(ids...).
			Context(ctx).
			Do()
		return wrapAPIError(callErr, "channels.list")
	})
	if err != nil {
		return nil, cost, err
	}
	cost += CostChannelsList

	var found []DiscoveredChannel
	for _, ch := range chanResp.Items {
		if ch.Statistics == nil || ch.Statistics.HiddenSubscriberCount {
			continue
		}
		subs := int64(ch.Statistics.SubscriberCount)
		if opts.MaxSubscribers > 0 && subs > opts.MaxSubscribers {
			continue
		}

		d := DiscoveredChannel{
			ChannelID:       ch.Id,
			SubscriberCount: subs,
			ViewCount:       int64(ch.Statistics.ViewCount),
			VideoCount:      int64(ch.Statistics.VideoCount),
		}
		if ch.Snippet != nil {
			d.Title = ch.Snippet.Title
			d.ThumbnailURL = bestThumbnail(ch.Snippet.Thumbnails)
		}
		found = append(found, d)
	}

	sortDiscovered(found, opts.SortBy)
	return found, cost, nil
}

// sortDiscovered orders candidates: fewest uploads first for SortByVideos,
// most viewed first otherwise.
func sortDiscovered(found []DiscoveredChannel, sortBy string) {
	switch sortBy {
	case SortByVideos:
		sort.SliceStable(found, func(i, j int) bool {
			return found[i].VideoCount < found[j].VideoCount
		})
	default:
		sort.SliceStable(found, func(i, j int) bool {
			return found[i].ViewCount > found[j].ViewCount
		})
	}
}

// ResolveHandle resolves an @handle (with or without the leading @) to a
// channel id.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (string, int, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return "", 0, fmt.Errorf("empty handle")
	}

	var resp *youtube.ChannelListResponse
	err := withRetry(ctx, "channels.list", func() error {
		var callErr error
		resp, callErr = c.service.Channels.
			List([]string{"id"}).
			ForHandle(handle).
			Context(ctx).
			Do()
		return wrapAPIError(callErr, "channels.list")
	})
	if err != nil {
		return "", 0, err
	}
	if len(resp.Items) == 0 {
		return "", CostChannelsList, fmt.Errorf("handle @%s: %w", handle, ErrChannelNotFound)
	}
	return resp.Items[0].Id, CostChannelsList, nil
}
