// Package model defines the channel statistics data model shared by the
// fetch, analytics, history and persistence layers.
package model

import "time"

// StaticData holds channel fields collected once per cycle that are not
// point-in-time statistics. Empty string means the field was not returned
// by the API (or was not requested).
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type StaticData struct {
	Title               string `json:"title,omitempty"`
	Description         string `json:"description,omitempty"`
	CustomURL           string `json:"customUrl,omitempty"`
	PublishedAt         string `json:"publishedAt,omitempty"`
	Country             string `json:"country,omitempty"`
	DefaultLanguage     string `json:"defaultLanguage,omitempty"`
	ThumbnailURL        string `json:"thumbnailUrl,omitempty"`
	ThumbnailDefault    string `json:"thumbnailDefault,omitempty"`
	ThumbnailMedium     string `json:"thumbnailMedium,omitempty"`
	ThumbnailHigh       string `json:"thumbnailHigh,omitempty"`
	Keywords            string `json:"keywords,omitempty"`
	BannerExternalURL   string `json:"bannerExternalUrl,omitempty"`
	UnsubscribedTrailer string `json:"unsubscribedTrailer,omitempty"`
	UploadsPlaylistID   string `json:"uploadsPlaylistId,omitempty"`
	PrivacyStatus       string `json:"privacyStatus,omitempty"`
	LongUploadsStatus   string `json:"longUploadsStatus,omitempty"`

	TopicIDs        []string `json:"topicIds,omitempty"`
	TopicCategories []string `json:"topicCategories,omitempty"`

	IsLinked                *bool `json:"isLinked,omitempty"`
	MadeForKids             *bool `json:"madeForKids,omitempty"`
	SelfDeclaredMadeForKids *bool `json:"selfDeclaredMadeForKids,omitempty"`
}

// PublishedAtTime parses the publishedAt timestamp. Returns nil when the
// field is absent or malformed.
func (s *StaticData) PublishedAtTime() *time.Time {
	if s == nil || s.PublishedAt == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.PublishedAt)
	if err != nil {
		return nil
	}
	return &t
}

// RawSnapshot is one point-in-time capture of a channel's mutable
// statistics, exactly as returned by the API (counts as decimal strings).
type RawSnapshot struct {
	SubscriberCount       string `json:"subscriberCount,omitempty"`
	ViewCount             string `json:"viewCount,omitempty"`
	VideoCount            string `json:"videoCount,omitempty"`
	HiddenSubscriberCount *bool  `json:"hiddenSubscriberCount,omitempty"`
}

// ShortsAggregate sums the shorts found among a channel's most recent
// uploads (up to 1000 videos; short = duration of at most 60 seconds).
type ShortsAggregate struct {
	ShortsCount      int64 `json:"shortsCount"`
	TotalShortsViews int64 `json:"totalShortsViews"`
}

// Snapshot is the persisted per-cycle record: the raw statistics plus the
// derived metrics under their four-character short keys, plus the display
// fields carried along for the read side. Derived fields are pointers so an
// uncomputed metric is omitted rather than stored as zero.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Snapshot struct {
	TS string `json:"ts"`

	Title            string `json:"title,omitempty"`
	CustomURL        string `json:"customUrl,omitempty"`
	Country          string `json:"country,omitempty"`
	ThumbnailURL     string `json:"thumbnailUrl,omitempty"`
	ThumbnailDefault string `json:"thumbnailDefault,omitempty"`
	ThumbnailMedium  string `json:"thumbnailMedium,omitempty"`
	ThumbnailHigh    string `json:"thumbnailHigh,omitempty"`

	SubscriberCount       string `json:"subscriberCount,omitempty"`
	ViewCount             string `json:"viewCount,omitempty"`
	VideoCount            string `json:"videoCount,omitempty"`
	HiddenSubscriberCount *bool  `json:"hiddenSubscriberCount,omitempty"`

	// Growth metrics
	Gavg *float64 `json:"gavg,omitempty"` // averageViewsPerVideo
	Gsub *float64 `json:"gsub,omitempty"` // subscribersPerVideo (conversion rate %)
	Gvps *float64 `json:"gvps,omitempty"` // viewsPerSubscriber %
	Gage *float64 `json:"gage,omitempty"` // channelAgeInDays
	Gupw *float64 `json:"gupw,omitempty"` // uploadsPerWeek
	Gspd *float64 `json:"gspd,omitempty"` // subsGainedPerDay
	Gvpd *float64 `json:"gvpd,omitempty"` // viewsGainedPerDay
	Gspm *float64 `json:"gspm,omitempty"` // subsGainedPerMonth
	Gspy *float64 `json:"gspy,omitempty"` // subsGainedPerYear
	Gvir *float64 `json:"gvir,omitempty"` // viralIndex

	// Content analysis
	Csct *float64 `json:"csct,omitempty"` // shortsCount
	Clct *float64 `json:"clct,omitempty"` // longformCount
	Csdr *float64 `json:"csdr,omitempty"` // totalShortsDuration

	// View analysis
	Vesv *float64 `json:"vesv,omitempty"` // estimatedShortsViews
	Vsvp *float64 `json:"vsvp,omitempty"` // shortsViewsPercentage
	Velv *float64 `json:"velv,omitempty"` // estimatedLongformViews
	Vlvp *float64 `json:"vlvp,omitempty"` // longformViewsPercentage
}

// Derived returns a pointer to the derived metric stored under the given
// short key, or nil for an unknown key. Used by the completeness validator
// so the required-field list stays a data table.
func (s *Snapshot) Derived(shortKey string) *float64 {
	switch shortKey {
	case "gavg":
		return s.Gavg
	case "gsub":
		return s.Gsub
	case "gvps":
		return s.Gvps
	case "gage":
		return s.Gage
	case "gupw":
		return s.Gupw
	case "gspd":
		return s.Gspd
	case "gvpd":
		return s.Gvpd
	case "gspm":
		return s.Gspm
	case "gspy":
		return s.Gspy
	case "gvir":
		return s.Gvir
	case "csct":
		return s.Csct
	case "clct":
		return s.Clct
	case "csdr":
		return s.Csdr
	case "vesv":
		return s.Vesv
	case "vsvp":
		return s.Vsvp
	case "velv":
		return s.Velv
	case "vlvp":
		return s.Vlvp
	}
	return nil
}

// SetDerived stores a derived metric under its short key. Unknown keys are
// ignored.
func (s *Snapshot) SetDerived(shortKey string, v float64) {
	switch shortKey {
	case "gavg":
		s.Gavg = &v
	case "gsub":
		s.Gsub = &v
	case "gvps":
		s.Gvps = &v
	case "gage":
		s.Gage = &v
	case "gupw":
		s.Gupw = &v
	case "gspd":
		s.Gspd = &v
	case "gvpd":
		s.Gvpd = &v
	case "gspm":
		s.Gspm = &v
	case "gspy":
		s.Gspy = &v
	case "gvir":
		s.Gvir = &v
	case "csct":
		s.Csct = &v
	case "clct":
		s.Clct = &v
	case "csdr":
		s.Csdr = &v
	case "vesv":
		s.Vesv = &v
	case "vsvp":
		s.Vsvp = &v
	case "velv":
		s.Velv = &v
	case "vlvp":
		s.Vlvp = &v
	}
}
