// Package analytics computes the derived channel metrics and enforces
// consistency between the shorts/longform view shares.
package analytics

import (
	"errors"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
	"github.com/danbi-analytics/channel-collector-go/internal/registry"
	"github.com/danbi-analytics/channel-collector-go/pkg/logger"
)

// ErrCrawlArtifact marks a fetch that returned structurally valid but
// semantically empty statistics (zero views and zero videos). The caller
// must skip persistence for the channel instead of storing zero-biased
// metrics.
var ErrCrawlArtifact = errors.New("crawl artifact: channel reported zero views and zero videos")

const (
	daysPerMonth = 30.44
	daysPerYear  = 365.25

	// Shorts analysis scans at most this many recent uploads, so longform
	// counts are relative to the analyzed window, not the whole channel.
	maxAnalyzedVideos = 1000

	// Estimated average length of a short, in seconds.
	shortsDurationEstimate = 60
)

// intermediates carries unrounded values between dependent computation
// steps: subsGainedPerMonth/Year reuse the unrounded per-day rate, and the
// view-share fields reuse the raw shorts view total.
type intermediates struct {
	channelAgeDays       float64
	subsGainedPerDay     float64
	estimatedShortsViews float64

	hasAge         bool
	hasSubsPerDay  bool
	hasShortsViews bool
}

// Compute derives the requested metrics from a raw snapshot. Each metric is
// computed only when requested and only when its inputs are present; a
// metric with a missing input is omitted, never defaulted to zero. The
// result carries the raw counts and a timestamp taken from now.
//
// Returns ErrCrawlArtifact when the snapshot reports zero views and zero
// videos.
func Compute(raw model.RawSnapshot, publishedAt *time.Time, shorts *model.ShortsAggregate, requested registry.FieldSet, now time.Time) (snap *model.Snapshot, err error) {
	subs, hasSubs := parseCount(raw.SubscriberCount)
	views, hasViews := parseCount(raw.ViewCount)
	videos, hasVideos := parseCount(raw.VideoCount)

	if hasViews && hasVideos && views == 0 && videos == 0 {
		return nil, ErrCrawlArtifact
	}

	snap = &model.Snapshot{
		TS:                    now.UTC().Format(time.RFC3339),
		SubscriberCount:       raw.SubscriberCount,
		ViewCount:             raw.ViewCount,
		VideoCount:            raw.VideoCount,
		HiddenSubscriberCount: raw.HiddenSubscriberCount,
	}

	// An unexpected panic in one computation drops the remaining fields
	// rather than aborting the channel; the validator decides downstream
	// whether the result is complete enough to persist.
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("derived metrics computation panicked",
				zap.Any("panic", r),
			)
			err = nil
		}
	}()

	var mid intermediates

	// Growth metrics.
	if requested.Has("averageViewsPerVideo") && hasViews && views > 0 && hasVideos && videos > 0 {
		snap.SetDerived("gavg", math.Round(views/videos))
	}
	if requested.Has("subscribersPerVideo") && hasSubs && subs > 0 && hasViews && views > 0 {
		snap.SetDerived("gsub", round4(subs/views*100))
	}
	if requested.Has("viewsPerSubscriber") && hasViews && views > 0 && hasSubs && subs > 0 {
		snap.SetDerived("gvps", round2(views/subs*100))
	}
	if requested.Has("channelAgeInDays") && publishedAt != nil {
		mid.channelAgeDays = math.Floor(now.Sub(*publishedAt).Hours() / 24)
		mid.hasAge = true
		snap.SetDerived("gage", mid.channelAgeDays)
	}
	if requested.Has("uploadsPerWeek") && hasVideos && videos > 0 && mid.hasAge && mid.channelAgeDays > 0 {
		snap.SetDerived("gupw", round2(videos/(mid.channelAgeDays/7)))
	}
	if requested.Has("subsGainedPerDay") && hasSubs && subs > 0 && mid.hasAge && mid.channelAgeDays > 0 {
		mid.subsGainedPerDay = subs / mid.channelAgeDays
		mid.hasSubsPerDay = true
		snap.SetDerived("gspd", math.Round(mid.subsGainedPerDay))
	}
	if requested.Has("viewsGainedPerDay") && hasViews && views > 0 && mid.hasAge && mid.channelAgeDays > 0 {
		snap.SetDerived("gvpd", math.Round(views/mid.channelAgeDays))
	}
	if requested.Has("subsGainedPerMonth") && mid.hasSubsPerDay {
		snap.SetDerived("gspm", math.Round(mid.subsGainedPerDay*daysPerMonth))
	}
	if requested.Has("subsGainedPerYear") && mid.hasSubsPerDay {
		snap.SetDerived("gspy", math.Round(mid.subsGainedPerDay*daysPerYear))
	}
	if requested.Has("viralIndex") && hasSubs && subs > 0 && hasViews && views > 0 && hasVideos && videos > 0 {
		conversionRatePercent := subs / views * 100
		avgViewsPerVideo := views / videos
		snap.SetDerived("gvir", math.Round(conversionRatePercent*100+avgViewsPerVideo/1_000_000))
	}

	// Content analysis.
	if requested.Has("shortsCount") && shorts != nil {
		snap.SetDerived("csct", float64(shorts.ShortsCount))
	}
	if requested.Has("longformCount") && hasVideos && videos > 0 && shorts != nil {
		analyzed := math.Min(videos, maxAnalyzedVideos)
		snap.SetDerived("clct", analyzed-float64(shorts.ShortsCount))
	}
	if requested.Has("totalShortsDuration") && shorts != nil {
		snap.SetDerived("csdr", float64(shorts.ShortsCount*shortsDurationEstimate))
	}

	// View analysis.
	if requested.Has("estimatedShortsViews") && shorts != nil {
		mid.estimatedShortsViews = float64(shorts.TotalShortsViews)
		mid.hasShortsViews = true
		snap.SetDerived("vesv", mid.estimatedShortsViews)
	}
	if requested.Has("shortsViewsPercentage") && hasViews && views > 0 && mid.hasShortsViews {
		snap.SetDerived("vsvp", round2(mid.estimatedShortsViews/views*100))
	}
	if requested.Has("estimatedLongformViews") && hasViews && views > 0 && mid.hasShortsViews {
		snap.SetDerived("velv", math.Max(0, views-mid.estimatedShortsViews))
	}
	if requested.Has("longformViewsPercentage") && hasViews && views > 0 && snap.Velv != nil {
		snap.SetDerived("vlvp", round2(*snap.Velv/views*100))
	}

	return snap, nil
}

// parseCount parses an API decimal-string count. Absent or malformed values
// report not-present rather than zero so downstream guards skip the field.
func parseCount(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
