// Package catalog bundles a read-only knowledge base of famous places per
// city. It is checked into the binary and never modified at runtime.
package catalog

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/roamkit/tripscope/pkg/places"
)

//go:embed places.json
var placesJSON []byte

type cityData struct {
	Country string         `json:"country"`
	Places  []places.Place `json:"places"`
}

// Catalog maps normalized location keys to their bundled place lists.
type Catalog struct {
	cities map[string]cityData
}

// Load parses the embedded places database. The embedded data is validated
// at build time in tests, so a parse failure here is a packaging bug.
func Load() (*Catalog, error) {
	var cities map[string]cityData
	if err := json.Unmarshal(placesJSON, &cities); err != nil {
		return nil, err
	}
	return &Catalog{cities: cities}, nil
}

// NormalizeLocation turns a requested location into a lookup key: lowercased,
// trimmed, anything after the first comma dropped ("Tokyo, Japan" → "tokyo"),
// and inner whitespace collapsed.
func NormalizeLocation(location string) string {
	s := strings.ToLower(strings.TrimSpace(location))
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	return strings.Join(strings.Fields(s), " ")
}

// Lookup returns the bundled places for a location and whether the location
// is covered at all.
func (c *Catalog) Lookup(location string) ([]places.Place, bool) {
	city, ok := c.cities[NormalizeLocation(location)]
	if !ok {
		return nil, false
	}
	return city.Places, true
}

// Country returns the country recorded for a covered location.
func (c *Catalog) Country(location string) string {
	return c.cities[NormalizeLocation(location)].Country
}

// Locations lists every covered location key.
func (c *Catalog) Locations() []string {
	out := make([]string, 0, len(c.cities))
	for k := range c.cities {
		out = append(out, k)
	}
	return out
}
