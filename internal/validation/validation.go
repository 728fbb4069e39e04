// Package validation checks that a collected channel carries every field
// required for persistence. A channel that fails validation is skipped
// entirely; partial documents are never written.
package validation

import (
	"fmt"
	"strings"

	"github.com/danbi-analytics/channel-collector-go/internal/model"
	"github.com/danbi-analytics/channel-collector-go/internal/registry"
)

// requiredStatic lists the static fields a persisted document depends on.
// country is special-cased: an absent country is auto-filled with the
// literal "null" rather than counted missing.
var requiredStatic = []string{"title", "customUrl", "country", "thumbnailDefault", "uploadsPlaylistId"}

// MissingFieldsError reports which required fields were absent, grouped by
// bucket.
type MissingFieldsError struct {
	Static   []string
	Snapshot []string
	Derived  []string
}

func (e *MissingFieldsError) Error() string {
	var parts []string
	if len(e.Static) > 0 {
		parts = append(parts, fmt.Sprintf("static: %s", strings.Join(e.Static, ", ")))
	}
	if len(e.Snapshot) > 0 {
		parts = append(parts, fmt.Sprintf("snapshot: %s", strings.Join(e.Snapshot, ", ")))
	}
	if len(e.Derived) > 0 {
		parts = append(parts, fmt.Sprintf("derived: %s", strings.Join(e.Derived, ", ")))
	}
	return "missing required fields (" + strings.Join(parts, "; ") + ")"
}

// Total returns the number of missing fields across all buckets.
func (e *MissingFieldsError) Total() int {
	return len(e.Static) + len(e.Snapshot) + len(e.Derived)
}

// Validate checks the 25 required fields: 5 static, 3 raw counts and the
// full derived metric set. A missing country is auto-filled in place and
// does not fail validation. Returns a *MissingFieldsError listing every
// absent field, or nil when the channel is complete.
func Validate(static *model.StaticData, snap *model.Snapshot) error {
	var missing MissingFieldsError

	for _, field := range requiredStatic {
		if staticValue(static, field) != "" {
			continue
		}
		if field == "country" {
			static.Country = "null"
			continue
		}
		missing.Static = append(missing.Static, field)
	}

	if snap.ViewCount == "" {
		missing.Snapshot = append(missing.Snapshot, "viewCount")
	}
	if snap.VideoCount == "" {
		missing.Snapshot = append(missing.Snapshot, "videoCount")
	}
	if snap.SubscriberCount == "" {
		missing.Snapshot = append(missing.Snapshot, "subscriberCount")
	}

	for _, key := range registry.DerivedShortKeys() {
		if snap.Derived(key) == nil {
			missing.Derived = append(missing.Derived, key)
		}
	}

	if missing.Total() > 0 {
		return &missing
	}
	return nil
}

func staticValue(static *model.StaticData, field string) string {
	switch field {
	case "title":
		return static.Title
	case "customUrl":
		return static.CustomURL
	case "country":
		return static.Country
	case "thumbnailDefault":
		return static.ThumbnailDefault
	case "uploadsPlaylistId":
		return static.UploadsPlaylistID
	}
	return ""
}
