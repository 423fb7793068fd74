package models

import "strings"

// MediaType is the closed set of content types the pipeline understands.
// Providers declare which types they are authoritative for; requests carry
// one of these as a filter.
type MediaType string

const (
	TypeAny    MediaType = "any"
	TypeMovie  MediaType = "movie"
	TypeSeries MediaType = "series"
	TypeAnime  MediaType = "anime"
	TypeBook   MediaType = "book"
)

// ParseMediaType maps free-form input to a MediaType, defaulting to TypeAny.
// "tv" is accepted as an alias for series because several upstream catalogs
// tag episodic content that way.
func ParseMediaType(s string) MediaType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "film":
		return TypeMovie
	case "series", "tv", "show":
		return TypeSeries
	case "anime":
		return TypeAnime
	case "book", "novel":
		return TypeBook
	default:
		return TypeAny
	}
}

// Matches reports whether an item tagged with type t satisfies the
// requested filter. Upstream "tv" tags are folded into TypeSeries at
// ingestion, so the check is plain identity. TypeAny matches everything.
func (t MediaType) Matches(requested MediaType) bool {
	if requested == TypeAny {
		return true
	}
	return t == requested
}

// CatalogItem is the normalized, internal form of one candidate returned by
// a single provider for a query. All provider payloads are mapped into this
// structure before anything downstream sees them.
//
// ID is provider-qualified ("tmdb:603", "jikan:5114") so entries from
// different catalogs never collide before fusion.
type CatalogItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Type          MediaType `json:"type"`
	Year          int       `json:"year,omitempty"`
	Genres        []string  `json:"genres,omitempty"`
	PopularityRaw *float64  `json:"popularity_raw,omitempty"` // provider-native, commonly 0-10
	Synopsis      string    `json:"synopsis,omitempty"`
	Creators      []string  `json:"creators,omitempty"`
	Cast          []string  `json:"cast,omitempty"`
	ThumbKey      string    `json:"thumb_key,omitempty"`
	Source        string    `json:"source"`
}

// RankedEntry is one (id, score) pair inside a RankedList. Fusion only
// consumes the positional rank; Score is kept for debugging.
type RankedEntry struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// RankedList is one signal's ordering of candidates, best first.
// Lives only within a single pipeline run.
type RankedList struct {
	Signal  string        `json:"signal"`
	Entries []RankedEntry `json:"entries"`
}

// Suggestion is the lightweight autocomplete projection of a CatalogItem.
type Suggestion struct {
	Title    string    `json:"title"`
	Type     MediaType `json:"type"`
	Year     int       `json:"year,omitempty"`
	ThumbKey string    `json:"thumb_key,omitempty"`
}

// SuggestionFrom projects a CatalogItem into its autocomplete form.
func SuggestionFrom(it CatalogItem) Suggestion {
	return Suggestion{
		Title:    it.Title,
		Type:     it.Type,
		Year:     it.Year,
		ThumbKey: it.ThumbKey,
	}
}

// RecommendationItem is a CatalogItem plus its final blended score and the
// locale whose localized fields were actually used. Created once during
// final assembly, never mutated afterwards.
type RecommendationItem struct {
	CatalogItem
	Score  float64 `json:"score"`
	Locale string  `json:"locale"`
}

// ResultDebug carries result-set level counters for callers that want them.
type ResultDebug struct {
	TotalCandidates int `json:"total_candidates"`
	Relaxations     int `json:"relaxations"`
}

// Result is the terminal output of one pipeline run.
type Result struct {
	Items []RecommendationItem `json:"items"`
	Debug ResultDebug          `json:"debug"`
}

// LocalizedText is one stored localization record for an item.
type LocalizedText struct {
	ItemID   string `json:"item_id"`
	Locale   string `json:"locale"`
	Title    string `json:"title,omitempty"`
	Synopsis string `json:"synopsis,omitempty"`
}
