package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
)

var mergeTime = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

func TestMergeDaily_SeedWithoutPrior(t *testing.T) {
	got := MergeDaily(nil, "1000", mergeTime)

	require.Len(t, got, 1)
	assert.Equal(t, "2025-06-10", got[0].Date)
	assert.Equal(t, "1000", got[0].TotalViews)
	assert.Equal(t, "0", got[0].DailyIncrease)
}

func TestMergeDaily_AppendsAndComputesIncrease(t *testing.T) {
	prior := &model.ChannelDocument{
		DailyViewsHistory: []model.DailyViewsEntry{
			{Date: "2025-06-09", TotalViews: "900", DailyIncrease: "50"},
			{Date: "2025-06-08", TotalViews: "850", DailyIncrease: "0"},
		},
	}

	got := MergeDaily(prior, "1000", mergeTime)

	require.Len(t, got, 3)
	assert.Equal(t, "2025-06-10", got[0].Date)
	assert.Equal(t, "100", got[0].DailyIncrease)
	assert.Equal(t, "2025-06-09", got[1].Date)
}

func TestMergeDaily_Idempotent(t *testing.T) {
	prior := &model.ChannelDocument{
		DailyViewsHistory: []model.DailyViewsEntry{
			{Date: "2025-06-09", TotalViews: "900", DailyIncrease: "0"},
		},
	}

	first := MergeDaily(prior, "1000", mergeTime)
	second := MergeDaily(&model.ChannelDocument{DailyViewsHistory: first}, "1000", mergeTime)

	assert.Equal(t, first, second)
	require.Len(t, second, 2)
	assert.Equal(t, "100", second[0].DailyIncrease)
}

func TestMergeDaily_NegativeIncrease(t *testing.T) {
	prior := &model.ChannelDocument{
		DailyViewsHistory: []model.DailyViewsEntry{
			{Date: "2025-06-09", TotalViews: "1200", DailyIncrease: "0"},
		},
	}

	got := MergeDaily(prior, "1000", mergeTime)
	assert.Equal(t, "-200", got[0].DailyIncrease)
}

func TestMergeDaily_CapsAtSeven(t *testing.T) {
	prior := &model.ChannelDocument{}
	for d := 1; d <= 9; d++ {
		prior.DailyViewsHistory = append(prior.DailyViewsHistory, model.DailyViewsEntry{
			Date:       time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			TotalViews: "100",
		})
	}

	got := MergeDaily(prior, "1000", mergeTime)

	require.Len(t, got, 7)
	assert.Equal(t, "2025-06-10", got[0].Date)
	assert.Equal(t, "2025-06-04", got[6].Date)
}

func TestMergeDaily_SynthesizesFromLegacySnapshots(t *testing.T) {
	prior := &model.ChannelDocument{
		Snapshots: []model.Snapshot{
			{TS: "2025-06-08T00:00:00Z", ViewCount: "800"},
			{TS: "2025-06-07T00:00:00Z", ViewCount: "700"},
			{TS: "2025-06-09T00:00:00Z", ViewCount: "950"},
		},
	}

	got := MergeDaily(prior, "1000", mergeTime)

	require.Len(t, got, 4)
	assert.Equal(t, model.DailyViewsEntry{Date: "2025-06-10", TotalViews: "1000", DailyIncrease: "50"}, got[0])
	assert.Equal(t, model.DailyViewsEntry{Date: "2025-06-09", TotalViews: "950", DailyIncrease: "150"}, got[1])
	assert.Equal(t, model.DailyViewsEntry{Date: "2025-06-08", TotalViews: "800", DailyIncrease: "100"}, got[2])
	assert.Equal(t, model.DailyViewsEntry{Date: "2025-06-07", TotalViews: "700", DailyIncrease: "0"}, got[3])
}

func TestMergeDaily_SynthesizesFromSingleLegacySnapshot(t *testing.T) {
	prior := &model.ChannelDocument{
		Snapshots: []model.Snapshot{{TS: "2025-06-09T00:00:00Z", ViewCount: "900"}},
	}

	got := MergeDaily(prior, "1000", mergeTime)

	require.Len(t, got, 2)
	assert.Equal(t, model.DailyViewsEntry{Date: "2025-06-10", TotalViews: "1000", DailyIncrease: "100"}, got[0])
	assert.Equal(t, model.DailyViewsEntry{Date: "2025-06-09", TotalViews: "900", DailyIncrease: "0"}, got[1])
}

func TestMergeWeekly_SeedWithoutPrior(t *testing.T) {
	got := MergeWeekly(nil, "5000", mergeTime)

	require.Len(t, got, 1)
	assert.Equal(t, "2025-06-03", got[0].StartDate)
	assert.Equal(t, "2025-06-10", got[0].EndDate)
	assert.Equal(t, "5000", got[0].TotalViews)
	assert.Equal(t, "0", got[0].WeeklyIncrease)
}

func TestMergeWeekly_GapUnderSevenDaysIsNoOp(t *testing.T) {
	prior := &model.ChannelDocument{
		WeeklyViewsHistory: []model.WeeklyViewsEntry{
			{StartDate: "2025-05-28", EndDate: "2025-06-04", TotalViews: "4000", WeeklyIncrease: "0"},
		},
	}

	got := MergeWeekly(prior, "5000", mergeTime) // 6 days after endDate

	assert.Equal(t, prior.WeeklyViewsHistory, got)
}

func TestMergeWeekly_GapOfSevenDaysAppends(t *testing.T) {
	prior := &model.ChannelDocument{
		WeeklyViewsHistory: []model.WeeklyViewsEntry{
			{StartDate: "2025-05-27", EndDate: "2025-06-03", TotalViews: "4000", WeeklyIncrease: "0"},
		},
	}

	got := MergeWeekly(prior, "5000", mergeTime) // exactly 7 days after endDate

	require.Len(t, got, 2)
	assert.Equal(t, "2025-06-03", got[0].StartDate)
	assert.Equal(t, "2025-06-10", got[0].EndDate)
	assert.Equal(t, "1000", got[0].WeeklyIncrease)
	assert.Equal(t, prior.WeeklyViewsHistory[0], got[1])
}

func TestMergeWeekly_CapsAtFour(t *testing.T) {
	prior := &model.ChannelDocument{
		WeeklyViewsHistory: []model.WeeklyViewsEntry{
			{StartDate: "2025-05-27", EndDate: "2025-06-03", TotalViews: "4000"},
			{StartDate: "2025-05-20", EndDate: "2025-05-27", TotalViews: "3000"},
			{StartDate: "2025-05-13", EndDate: "2025-05-20", TotalViews: "2000"},
			{StartDate: "2025-05-06", EndDate: "2025-05-13", TotalViews: "1000"},
		},
	}

	got := MergeWeekly(prior, "5000", mergeTime)

	require.Len(t, got, 4)
	assert.Equal(t, "2025-06-10", got[0].EndDate)
	assert.Equal(t, "2025-05-20", got[3].EndDate)
}

func TestMergeSubscribers_SeedWithoutPrior(t *testing.T) {
	got := MergeSubscribers(nil, "250", mergeTime)

	require.Len(t, got, 1)
	assert.Equal(t, model.SubscriberEntry{Month: "2025-06", Count: "250"}, got[0])
}

func TestMergeSubscribers_SameMonthOverwritesInPlace(t *testing.T) {
	prior := &model.ChannelDocument{
		SubscriberHistory: []model.SubscriberEntry{
			{Month: "2025-06", Count: "200"},
			{Month: "2025-05", Count: "150"},
		},
	}

	got := MergeSubscribers(prior, "250", mergeTime)

	require.Len(t, got, 2)
	assert.Equal(t, "250", got[0].Count)
	assert.Equal(t, "2025-05", got[1].Month)

	// Prior document is never mutated.
	assert.Equal(t, "200", prior.SubscriberHistory[0].Count)
}

func TestMergeSubscribers_NewMonthPrependsAndCapsAtFive(t *testing.T) {
	prior := &model.ChannelDocument{
		SubscriberHistory: []model.SubscriberEntry{
			{Month: "2025-05", Count: "150"},
			{Month: "2025-04", Count: "140"},
			{Month: "2025-03", Count: "130"},
			{Month: "2025-02", Count: "120"},
			{Month: "2025-01", Count: "110"},
		},
	}

	got := MergeSubscribers(prior, "250", mergeTime)

	require.Len(t, got, 5)
	assert.Equal(t, "2025-06", got[0].Month)
	assert.Equal(t, "2025-02", got[4].Month)
}
