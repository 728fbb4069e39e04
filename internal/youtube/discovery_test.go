package youtube

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yt "google.golang.org/api/youtube/v3"
)

func newDiscoveryStub(t *testing.T, lookedUp *[]string) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, &yt.SearchListResponse{Items: []*yt.SearchResult{
			{Id: &yt.ResourceId{ChannelId: "UCa"}},
			{Id: &yt.ResourceId{ChannelId: "UCb"}},
			{Id: &yt.ResourceId{ChannelId: "UCc"}},
			{Id: &yt.ResourceId{ChannelId: "UCd"}},
		}})
	})
	mux.HandleFunc("/youtube/v3/channels", func(w http.ResponseWriter, r *http.Request) {
		*lookedUp = append(*lookedUp, r.URL.Query()["id"]...)
		writeJSON(t, w, &yt.ChannelListResponse{Items: []*yt.Channel{
			{
				Id:         "UCa",
				Snippet:    &yt.ChannelSnippet{Title: "Channel A"},
				Statistics: &yt.ChannelStatistics{SubscriberCount: 1000, ViewCount: 5000, VideoCount: 3},
			},
			{
				Id:         "UCb",
				Snippet:    &yt.ChannelSnippet{Title: "Channel B"},
				Statistics: &yt.ChannelStatistics{SubscriberCount: 2000, ViewCount: 9000, VideoCount: 5},
			},
			{
				Id:         "UCc",
				Snippet:    &yt.ChannelSnippet{Title: "Channel C"},
				Statistics: &yt.ChannelStatistics{SubscriberCount: 999999, ViewCount: 100, VideoCount: 1},
			},
		}})
	})
	return newStubClient(t, mux)
}

func TestFindChannels_ExcludesKnownAndSortsByViews(t *testing.T) {
	var lookedUp []string
	client := newDiscoveryStub(t, &lookedUp)

	found, cost, err := client.FindChannels(context.Background(), "cooking", SearchOptions{
		MaxSubscribers: 10000,
		ExcludeIDs:     []string{"UCd"},
	})

	require.NoError(t, err)
	assert.Equal(t, CostSearchList+CostChannelsList, cost)

	// Excluded ids never reach the stats lookup.
	assert.NotContains(t, lookedUp, "UCd")

	// UCc is over the subscriber ceiling; the rest come back most viewed first.
	require.Len(t, found, 2)
	assert.Equal(t, "UCb", found[0].ChannelID)
	assert.Equal(t, int64(9000), found[0].ViewCount)
	assert.Equal(t, "UCa", found[1].ChannelID)
}

func TestFindChannels_SortByVideosAscending(t *testing.T) {
	var lookedUp []string
	client := newDiscoveryStub(t, &lookedUp)

	found, _, err := client.FindChannels(context.Background(), "cooking", SearchOptions{
		MaxSubscribers: 10000,
		SortBy:         SortByVideos,
	})

	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "UCa", found[0].ChannelID) // 3 uploads
	assert.Equal(t, "UCb", found[1].ChannelID) // 5 uploads
}

func TestSortDiscovered_DefaultsToViews(t *testing.T) {
	found := []DiscoveredChannel{
		{ChannelID: "low", ViewCount: 10},
		{ChannelID: "high", ViewCount: 100},
	}
	sortDiscovered(found, "")
	assert.Equal(t, "high", found[0].ChannelID)
}
