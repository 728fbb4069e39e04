package model

// DailyViewsEntry is one calendar day in the 7-day daily views window.
// Counts stay decimal strings in the persisted document; dailyIncrease may
// be negative when the API reports a lower total than the previous day.
type DailyViewsEntry struct {
	Date          string `json:"date"`
	TotalViews    string `json:"totalViews"`
	DailyIncrease string `json:"dailyIncrease"`
}

// WeeklyViewsEntry is one rolling 7-day window in the 4-entry weekly views
// history.
type WeeklyViewsEntry struct {
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	TotalViews     string `json:"totalViews"`
	WeeklyIncrease string `json:"weeklyIncrease"`
}

// SubscriberEntry is one calendar month ("YYYY-MM") in the 5-entry
// subscriber history.
type SubscriberEntry struct {
	Month string `json:"month"`
	Count string `json:"count"`
}

// ThumbnailEntry is one recently published video in the thumbnails history.
type ThumbnailEntry struct {
	Date  string `json:"date"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// DocumentStatic is the staticData block of a persisted document. Only the
// channel creation date lives here; everything else is re-collected into the
// snapshot each cycle.
type DocumentStatic struct {
	PublishedAt string `json:"publishedAt,omitempty"`
}

// Metadata tracks the collection lifecycle of a persisted document.
// firstCollected never changes once set; totalCollections only grows.
type Metadata struct {
	FirstCollected   string `json:"firstCollected"`
	LastUpdated      string `json:"lastUpdated"`
	TotalCollections int    `json:"totalCollections"`
}

// ChannelDocument is the at-rest JSON document for one channel, keyed as
// <channelId>.json in the store. The field names and shapes are a contract
// with the read-side tooling and must not drift.
//
// Snapshots always has length 1 after a write: the previous cycle's snapshot
// is overwritten, not appended; long-term state lives in the history arrays,
// all of which are capped and ordered newest first.
type ChannelDocument struct {
	ChannelID               string             `json:"channelId"`
	StaticData              *DocumentStatic    `json:"staticData,omitempty"`
	Snapshots               []Snapshot         `json:"snapshots"`
	SubscriberHistory       []SubscriberEntry  `json:"subscriberHistory,omitempty"`
	DailyViewsHistory       []DailyViewsEntry  `json:"dailyViewsHistory,omitempty"`
	WeeklyViewsHistory      []WeeklyViewsEntry `json:"weeklyViewsHistory,omitempty"`
	RecentThumbnailsHistory []ThumbnailEntry   `json:"recentThumbnailsHistory,omitempty"`
	Metadata                *Metadata          `json:"metadata,omitempty"`
}

// IndexEntry is one channel's row in the index document.
type IndexEntry struct {
	ChannelID      string `json:"channelId"`
	Title          string `json:"title"`
	FirstCollected string `json:"firstCollected,omitempty"`
	LastUpdated    string `json:"lastUpdated"`
	TotalSnapshots int    `json:"totalSnapshots"`
}

// ChannelIndex is the _channel_index.json document listing every known
// channel, maintained best-effort alongside channel writes.
type ChannelIndex struct {
	LastUpdated   string       `json:"lastUpdated"`
	TotalChannels int          `json:"totalChannels"`
	Channels      []IndexEntry `json:"channels"`
}

// BatchProgress is the batch checkpoint file written after each channel so
// an interrupted run can resume where it stopped.
type BatchProgress struct {
	Completed   int    `json:"complete"`
	Total       int    `json:"total"`
	LastUpdated string `json:"lastUpdated"`
}
