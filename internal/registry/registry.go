// Package registry is the static catalog of collectible channel fields.
//
// Every field the collector knows about is one row here: which YouTube API
// part supplies it, which output bucket it lands in, and (for derived
// metrics) the four-character short key it is persisted under. Adding a
// field is a table edit, not new branch logic.
package registry

// Bucket classifies where a field's value lives in the persisted document.
type Bucket string

const (
	// BucketStatic fields describe the channel itself (title, URLs, topic
	// data) and are re-collected each cycle.
	BucketStatic Bucket = "static"
	// BucketSnapshot fields are point-in-time statistics.
	BucketSnapshot Bucket = "snapshot"
	// BucketDerived fields are computed from snapshot fields and stored
	// under their short keys.
	BucketDerived Bucket = "derived"
)

// Field is one registry row. APIPart is empty for derived fields (they are
// not fetched); ShortKey is empty for raw API fields.
type Field struct {
	ID       string
	APIPart  string
	Bucket   Bucket
	ShortKey string
}

var fields = []Field{
	// snippet
	{ID: "title", APIPart: "snippet", Bucket: BucketStatic},
	{ID: "description", APIPart: "snippet", Bucket: BucketStatic},
	{ID: "customUrl", APIPart: "snippet", Bucket: BucketStatic},
	{ID: "publishedAt", APIPart: "snippet", Bucket: BucketStatic},
	{ID: "country", APIPart: "snippet", Bucket: BucketStatic},
	{ID: "defaultLanguage", APIPart: "snippet", Bucket: BucketStatic},
	{ID: "thumbnailUrl", APIPart: "snippet", Bucket: BucketStatic},
	{ID: "thumbnailDefault", APIPart: "snippet", Bucket: BucketStatic},
	{ID: "thumbnailMedium", APIPart: "snippet", Bucket: BucketStatic},
	{ID: "thumbnailHigh", APIPart: "snippet", Bucket: BucketStatic},

	// statistics
	{ID: "subscriberCount", APIPart: "statistics", Bucket: BucketSnapshot},
	{ID: "viewCount", APIPart: "statistics", Bucket: BucketSnapshot},
	{ID: "videoCount", APIPart: "statistics", Bucket: BucketSnapshot},
	{ID: "hiddenSubscriberCount", APIPart: "statistics", Bucket: BucketSnapshot},

	// brandingSettings
	{ID: "keywords", APIPart: "brandingSettings", Bucket: BucketStatic},
	{ID: "bannerExternalUrl", APIPart: "brandingSettings", Bucket: BucketStatic},
	{ID: "unsubscribedTrailer", APIPart: "brandingSettings", Bucket: BucketStatic},

	// contentDetails
	{ID: "uploadsPlaylistId", APIPart: "contentDetails", Bucket: BucketStatic},

	// topicDetails
	{ID: "topicIds", APIPart: "topicDetails", Bucket: BucketStatic},
	{ID: "topicCategories", APIPart: "topicDetails", Bucket: BucketStatic},

	// status
	{ID: "privacyStatus", APIPart: "status", Bucket: BucketStatic},
	{ID: "isLinked", APIPart: "status", Bucket: BucketStatic},
	{ID: "longUploadsStatus", APIPart: "status", Bucket: BucketStatic},
	{ID: "madeForKids", APIPart: "status", Bucket: BucketStatic},
	{ID: "selfDeclaredMadeForKids", APIPart: "status", Bucket: BucketStatic},

	// derived: growth metrics
	{ID: "averageViewsPerVideo", Bucket: BucketDerived, ShortKey: "gavg"},
	{ID: "subscribersPerVideo", Bucket: BucketDerived, ShortKey: "gsub"},
	{ID: "viewsPerSubscriber", Bucket: BucketDerived, ShortKey: "gvps"},
	{ID: "channelAgeInDays", Bucket: BucketDerived, ShortKey: "gage"},
	{ID: "uploadsPerWeek", Bucket: BucketDerived, ShortKey: "gupw"},
	{ID: "subsGainedPerDay", Bucket: BucketDerived, ShortKey: "gspd"},
	{ID: "viewsGainedPerDay", Bucket: BucketDerived, ShortKey: "gvpd"},
	{ID: "subsGainedPerMonth", Bucket: BucketDerived, ShortKey: "gspm"},
	{ID: "subsGainedPerYear", Bucket: BucketDerived, ShortKey: "gspy"},
	{ID: "viralIndex", Bucket: BucketDerived, ShortKey: "gvir"},

	// derived: content analysis
	{ID: "shortsCount", Bucket: BucketDerived, ShortKey: "csct"},
	{ID: "longformCount", Bucket: BucketDerived, ShortKey: "clct"},
	{ID: "totalShortsDuration", Bucket: BucketDerived, ShortKey: "csdr"},

	// derived: view analysis
	{ID: "estimatedShortsViews", Bucket: BucketDerived, ShortKey: "vesv"},
	{ID: "shortsViewsPercentage", Bucket: BucketDerived, ShortKey: "vsvp"},
	{ID: "estimatedLongformViews", Bucket: BucketDerived, ShortKey: "velv"},
	{ID: "longformViewsPercentage", Bucket: BucketDerived, ShortKey: "vlvp"},
}

var byID = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.ID] = f
	}
	return m
}()

// FieldSet is a requested set of field IDs.
type FieldSet map[string]struct{}

// NewFieldSet builds a FieldSet from field IDs.
func NewFieldSet(ids ...string) FieldSet {
	s := make(FieldSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether the field id is in the set.
func (s FieldSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts a field id into the set.
func (s FieldSet) Add(id string) {
	s[id] = struct{}{}
}

// Lookup returns the registry row for the field id.
func Lookup(id string) (Field, bool) {
	f, ok := byID[id]
	return f, ok
}

// ShortKey returns the persisted short key for a field id. For fields
// without a short key the id itself is returned, matching the persisted
// naming of raw fields.
func ShortKey(id string) string {
	if f, ok := byID[id]; ok && f.ShortKey != "" {
		return f.ShortKey
	}
	return id
}

// PartsFor returns the distinct YouTube API parts needed to fetch the
// requested fields, in registry order. Derived fields contribute no part.
func PartsFor(set FieldSet) []string {
	seen := make(map[string]struct{})
	var parts []string
	for _, f := range fields {
		if f.APIPart == "" {
			continue
		}
		if !set.Has(f.ID) {
			continue
		}
		if _, ok := seen[f.APIPart]; ok {
			continue
		}
		seen[f.APIPart] = struct{}{}
		parts = append(parts, f.APIPart)
	}
	return parts
}

// DerivedFields returns all derived-metric rows in computation order.
func DerivedFields() []Field {
	var out []Field
	for _, f := range fields {
		if f.Bucket == BucketDerived {
			out = append(out, f)
		}
	}
	return out
}

// DerivedShortKeys returns the short keys of every derived metric, in
// computation order.
func DerivedShortKeys() []string {
	var out []string
	for _, f := range DerivedFields() {
		out = append(out, f.ShortKey)
	}
	return out
}

// AllFieldIDs returns every known field id.
func AllFieldIDs() []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.ID)
	}
	return out
}

// AllFields returns a FieldSet containing every known field.
func AllFields() FieldSet {
	return NewFieldSet(AllFieldIDs()...)
}
