package analytics

import (
	"math"

	"go.uber.org/zap"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
	"github.com/danbi-analytics/channel-collector-go/pkg/logger"
)

// epsilonPercent is the minimum view share attributed to a content type
// that demonstrably has at least one video.
const epsilonPercent = 1

// Correct enforces that a content type with at least one counted video never
// carries an exactly-zero view share. When the longform share is zero despite
// longform videos existing, the shorts share is capped at 100-ε and the
// longform share floored at ε; symmetrically for a zero shorts share. The
// estimated view totals are recomputed from the corrected percentages so the
// snapshot stays internally consistent. Reports whether anything changed.
func Correct(snap *model.Snapshot) bool {
	views, ok := parseCount(snap.ViewCount)
	if !ok || views == 0 {
		return false
	}

	corrected := false

	// Longform videos exist but all views were attributed to shorts.
	if snap.Clct != nil && *snap.Clct >= 1 && snap.Vlvp != nil && *snap.Vlvp == 0 {
		applyShares(snap, views, 100-epsilonPercent, epsilonPercent)
		corrected = true
	}

	// Shorts exist but all views were attributed to longform.
	if snap.Csct != nil && *snap.Csct >= 1 && snap.Vsvp != nil && *snap.Vsvp == 0 {
		applyShares(snap, views, epsilonPercent, 100-epsilonPercent)
		corrected = true
	}

	if corrected {
		logger.Log.Debug("applied view share correction",
			zap.Float64p("shortsViewsPercentage", snap.Vsvp),
			zap.Float64p("longformViewsPercentage", snap.Vlvp),
		)
	}
	return corrected
}

// applyShares rewrites both percentage fields and rederives the estimated
// view totals from the channel's overall view count. Only the dominant
// share's total is rounded; the minority total is the remainder, so the two
// always sum exactly to the view count.
func applyShares(snap *model.Snapshot, views, shortsPct, longformPct float64) {
	var shortsViews, longformViews float64
	if shortsPct >= longformPct {
		shortsViews = math.Round(views * shortsPct / 100)
		longformViews = views - shortsViews
	} else {
		longformViews = math.Round(views * longformPct / 100)
		shortsViews = views - longformViews
	}

	snap.SetDerived("vsvp", shortsPct)
	snap.SetDerived("vlvp", longformPct)
	snap.SetDerived("vesv", shortsViews)
	snap.SetDerived("velv", longformViews)
}
