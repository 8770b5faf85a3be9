package places

import "strings"

// Place is a partial, structured description of a recommendable place or
// experience. Instances come from the bundled catalog, from live extraction,
// or from the generic fallback set, and are immutable once built.
type Place struct {
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	PriceRange   string  `json:"price_range,omitempty"`
	OpeningHours string  `json:"opening_hours,omitempty"`
	Contact      string  `json:"contact_info,omitempty"`
	Address      string  `json:"address,omitempty"`

	// Interests holds the free-form tags used for relevance matching.
	Interests []string `json:"interests,omitempty"`

	WhyRecommended string `json:"why_recommended,omitempty"`

	// Extra catches attributes the extractor returned that don't map to a
	// well-known field.
	Extra map[string]string `json:"extra,omitempty"`
}

// Query describes a single discovery request. It is built per request and
// never persisted.
type Query struct {
	Location    string   `json:"location"`
	Interests   []string `json:"interests"`
	TravelDates string   `json:"travel_dates,omitempty"`
	Budget      string   `json:"budget,omitempty"`
}

// Scored pairs a place with its relevance score for one ranking pass.
type Scored struct {
	Place Place   `json:"place"`
	Score float64 `json:"score"`
}

// NormalizeInterest lowercases and trims an interest or tag for matching.
func NormalizeInterest(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// IdentityName returns the dedup identity of a place: its name lowercased
// and trimmed.
func IdentityName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}
