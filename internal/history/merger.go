// Package history merges fresh counts into the rolling per-channel history
// windows: daily views (7 days), weekly views (4 weeks) and subscriber
// counts (5 months). The merge functions are pure; they never mutate the
// prior document and a nil prior means "no history yet".
package history

import (
	"sort"
	"strconv"
	"time"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
)

const (
	dailyCap      = 7
	weeklyCap     = 4
	subscriberCap = 5

	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// MergeDaily returns the daily views window with an entry for today's UTC
// date. Re-running on the same day replaces today's entry instead of
// duplicating it. When the prior document carries legacy multi-entry
// snapshots but no daily array yet, the window is first synthesized by
// diffing consecutive snapshot view counts.
func MergeDaily(prior *model.ChannelDocument, currentViews string, now time.Time) []model.DailyViewsEntry {
	today := now.UTC().Format(dateLayout)

	if prior == nil {
		return []model.DailyViewsEntry{{Date: today, TotalViews: currentViews, DailyIncrease: "0"}}
	}

	existing := prior.DailyViewsHistory
	if len(existing) == 0 {
		existing = synthesizeDaily(prior.Snapshots)
	}

	merged := make([]model.DailyViewsEntry, 0, len(existing)+1)
	for _, e := range existing {
		if e.Date != today {
			merged = append(merged, e)
		}
	}

	increase := "0"
	if prev, ok := latestDaily(merged); ok {
		increase = strconv.FormatInt(parseInt(currentViews)-parseInt(prev.TotalViews), 10)
	}
	merged = append(merged, model.DailyViewsEntry{
		Date:          today,
		TotalViews:    currentViews,
		DailyIncrease: increase,
	})

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Date > merged[j].Date })
	if len(merged) > dailyCap {
		merged = merged[:dailyCap]
	}
	return merged
}

// synthesizeDaily rebuilds a daily window from legacy per-day snapshots,
// oldest to newest, diffing consecutive view counts. A single snapshot
// still yields one entry (increase "0") so today's merge can diff against
// it. Documents written by current collectors always carry a daily array,
// so this only fires for old data.
func synthesizeDaily(snapshots []model.Snapshot) []model.DailyViewsEntry {
	if len(snapshots) == 0 {
		return nil
	}

	ordered := make([]model.Snapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].TS < ordered[j].TS })

	entries := make([]model.DailyViewsEntry, 0, len(ordered))
	for i, snap := range ordered {
		if len(snap.TS) < len(dateLayout) || snap.ViewCount == "" {
			continue
		}
		increase := "0"
		if i > 0 {
			increase = strconv.FormatInt(parseInt(snap.ViewCount)-parseInt(ordered[i-1].ViewCount), 10)
		}
		entries = append(entries, model.DailyViewsEntry{
			Date:          snap.TS[:len(dateLayout)],
			TotalViews:    snap.ViewCount,
			DailyIncrease: increase,
		})
	}
	return entries
}

func latestDaily(entries []model.DailyViewsEntry) (model.DailyViewsEntry, bool) {
	var latest model.DailyViewsEntry
	found := false
	for _, e := range entries {
		if !found || e.Date > latest.Date {
			latest = e
			found = true
		}
	}
	return latest, found
}

// MergeWeekly returns the weekly views window. A new entry is appended only
// when at least 7 full days have passed since the most recent entry's end
// date; an earlier re-run returns the prior window unchanged. That is the
// "not yet due" case, not a failure.
func MergeWeekly(prior *model.ChannelDocument, currentViews string, now time.Time) []model.WeeklyViewsEntry {
	today := now.UTC().Format(dateLayout)

	if prior == nil || len(prior.WeeklyViewsHistory) == 0 {
		return []model.WeeklyViewsEntry{{
			StartDate:      now.UTC().AddDate(0, 0, -7).Format(dateLayout),
			EndDate:        today,
			TotalViews:     currentViews,
			WeeklyIncrease: "0",
		}}
	}

	existing := prior.WeeklyViewsHistory
	last := existing[0]

	lastEnd, err := time.ParseInLocation(dateLayout, last.EndDate, time.UTC)
	if err != nil {
		return existing
	}
	todayDate, _ := time.ParseInLocation(dateLayout, today, time.UTC)
	if int(todayDate.Sub(lastEnd).Hours()/24) < 7 {
		return existing
	}

	merged := make([]model.WeeklyViewsEntry, 0, len(existing)+1)
	merged = append(merged, model.WeeklyViewsEntry{
		StartDate:      last.EndDate,
		EndDate:        today,
		TotalViews:     currentViews,
		WeeklyIncrease: strconv.FormatInt(parseInt(currentViews)-parseInt(last.TotalViews), 10),
	})
	merged = append(merged, existing...)
	if len(merged) > weeklyCap {
		merged = merged[:weeklyCap]
	}
	return merged
}

// MergeSubscribers returns the monthly subscriber window. A second merge in
// the same calendar month overwrites that month's count in place; a new
// month prepends an entry and caps the window at 5.
func MergeSubscribers(prior *model.ChannelDocument, currentSubs string, now time.Time) []model.SubscriberEntry {
	month := now.UTC().Format(monthLayout)

	if prior == nil || len(prior.SubscriberHistory) == 0 {
		return []model.SubscriberEntry{{Month: month, Count: currentSubs}}
	}

	existing := prior.SubscriberHistory
	merged := make([]model.SubscriberEntry, len(existing))
	copy(merged, existing)

	for i := range merged {
		if merged[i].Month == month {
			merged[i].Count = currentSubs
			return merged
		}
	}

	merged = append([]model.SubscriberEntry{{Month: month, Count: currentSubs}}, merged...)
	if len(merged) > subscriberCap {
		merged = merged[:subscriberCap]
	}
	return merged
}

// parseInt reads a persisted decimal count; malformed values count as zero
// so a corrupt prior entry degrades to a wrong increase, not a lost merge.
func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
