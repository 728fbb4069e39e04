package store

import (
	"time"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
)

// MergeDocument assembles the document to persist for one collection cycle.
// The snapshot array always holds exactly the new snapshot; long-term state
// lives in the history arrays the caller already merged. Metadata is carried
// forward: firstCollected never changes once set and totalCollections grows
// by one per cycle.
func MergeDocument(prior *model.ChannelDocument, channelID string, static *model.StaticData, snap *model.Snapshot,
	daily []model.DailyViewsEntry, weekly []model.WeeklyViewsEntry, subs []model.SubscriberEntry,
	thumbnails []model.ThumbnailEntry, now time.Time) *model.ChannelDocument {

	nowStr := now.UTC().Format(time.RFC3339)

	// The snapshot carries the display fields so the read side never needs
	// a second lookup.
	snap.Title = static.Title
	snap.CustomURL = static.CustomURL
	snap.Country = static.Country
	snap.ThumbnailURL = static.ThumbnailURL
	snap.ThumbnailDefault = static.ThumbnailDefault
	snap.ThumbnailMedium = static.ThumbnailMedium
	snap.ThumbnailHigh = static.ThumbnailHigh

	meta := &model.Metadata{
		FirstCollected:   nowStr,
		LastUpdated:      nowStr,
		TotalCollections: 1,
	}
	if prior != nil && prior.Metadata != nil {
		if prior.Metadata.FirstCollected != "" {
			meta.FirstCollected = prior.Metadata.FirstCollected
		}
		meta.TotalCollections = prior.Metadata.TotalCollections + 1
	}

	doc := &model.ChannelDocument{
		ChannelID:               channelID,
		Snapshots:               []model.Snapshot{*snap},
		SubscriberHistory:       subs,
		DailyViewsHistory:       daily,
		WeeklyViewsHistory:      weekly,
		RecentThumbnailsHistory: thumbnails,
		Metadata:                meta,
	}
	if static.PublishedAt != "" {
		doc.StaticData = &model.DocumentStatic{PublishedAt: static.PublishedAt}
	} else if prior != nil {
		doc.StaticData = prior.StaticData
	}

	// A fresh thumbnails fetch fully replaces the field, but a failed fetch
	// must not erase what a previous cycle stored.
	if thumbnails == nil && prior != nil {
		doc.RecentThumbnailsHistory = prior.RecentThumbnailsHistory
	}

	return doc
}

// UpsertIndexEntry updates the channel's row in the index, or appends one
// for a channel seen for the first time, and refreshes the index header.
func UpsertIndexEntry(index *model.ChannelIndex, doc *model.ChannelDocument, now time.Time) {
	nowStr := now.UTC().Format(time.RFC3339)

	entry := model.IndexEntry{
		ChannelID:      doc.ChannelID,
		LastUpdated:    nowStr,
		TotalSnapshots: len(doc.Snapshots),
	}
	if len(doc.Snapshots) > 0 {
		entry.Title = doc.Snapshots[0].Title
	}
	if doc.Metadata != nil {
		entry.FirstCollected = doc.Metadata.FirstCollected
		entry.TotalSnapshots = doc.Metadata.TotalCollections
	}

	replaced := false
	for i := range index.Channels {
		if index.Channels[i].ChannelID == doc.ChannelID {
			index.Channels[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		index.Channels = append(index.Channels, entry)
	}

	index.LastUpdated = nowStr
	index.TotalChannels = len(index.Channels)
}
