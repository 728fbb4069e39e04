package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
	"github.com/danbi-analytics/channel-collector-go/internal/registry"
)

func completeStatic() *model.StaticData {
	return &model.StaticData{
		Title:             "Test Channel",
		CustomURL:         "@testchannel",
		Country:           "KR",
		ThumbnailDefault:  "https://example.com/default.jpg",
		UploadsPlaylistID: "UUxxxx",
	}
}

func completeSnapshot() *model.Snapshot {
	snap := &model.Snapshot{
		SubscriberCount: "1000",
		ViewCount:       "50000",
		VideoCount:      "20",
	}
	for _, key := range registry.DerivedShortKeys() {
		snap.SetDerived(key, 1)
	}
	return snap
}

func TestValidate_Complete(t *testing.T) {
	assert.NoError(t, Validate(completeStatic(), completeSnapshot()))
}

func TestValidate_MissingUploadsPlaylistID(t *testing.T) {
	static := completeStatic()
	static.UploadsPlaylistID = ""

	err := Validate(static, completeSnapshot())

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"uploadsPlaylistId"}, missing.Static)
	assert.Empty(t, missing.Snapshot)
	assert.Empty(t, missing.Derived)
	assert.Equal(t, 1, missing.Total())
}

func TestValidate_CountryAutoFilled(t *testing.T) {
	static := completeStatic()
	static.Country = ""

	err := Validate(static, completeSnapshot())

	assert.NoError(t, err)
	assert.Equal(t, "null", static.Country)
}

func TestValidate_MissingAcrossBuckets(t *testing.T) {
	static := completeStatic()
	static.Title = ""

	snap := completeSnapshot()
	snap.SubscriberCount = ""
	snap.Gavg = nil
	snap.Vlvp = nil

	err := Validate(static, snap)

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"title"}, missing.Static)
	assert.Equal(t, []string{"subscriberCount"}, missing.Snapshot)
	assert.ElementsMatch(t, []string{"gavg", "vlvp"}, missing.Derived)
	assert.Equal(t, 4, missing.Total())

	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "gavg")
}

func TestValidate_EmptySnapshot(t *testing.T) {
	err := Validate(completeStatic(), &model.Snapshot{})

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Snapshot, 3)
	assert.Len(t, missing.Derived, len(registry.DerivedShortKeys()))
}
