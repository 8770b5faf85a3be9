package discovery

import (
	"fmt"

	"github.com/roamkit/tripscope/pkg/places"
)

// FallbackPlaces returns the small generic set served when neither the
// catalog nor live sources produced anything for a location. Discovery must
// always return something usable, never an error.
func FallbackPlaces(location string) []places.Place {
	return []places.Place{
		{
			Name:           "City Center",
			Category:       "district",
			Description:    fmt.Sprintf("Main city center of %s with shops and restaurants", location),
			Rating:         4.0,
			PriceRange:     "Free",
			OpeningHours:   "24/7",
			WhyRecommended: "Heart of the city",
		},
		{
			Name:           "Central Museum",
			Category:       "museum",
			Description:    "Main city museum with local history",
			Rating:         4.2,
			PriceRange:     "$10-15",
			OpeningHours:   "10:00-17:00",
			WhyRecommended: "Learn about local culture and history",
		},
		{
			Name:           "Historic District",
			Category:       "historical",
			Description:    "Old part of town with historic buildings",
			Rating:         4.1,
			PriceRange:     "Free",
			OpeningHours:   "24/7",
			WhyRecommended: "Beautiful historic architecture",
		},
		{
			Name:           "Local Market",
			Category:       "market",
			Description:    "Traditional market with local products",
			Rating:         4.3,
			PriceRange:     "$5-20",
			OpeningHours:   "8:00-18:00",
			WhyRecommended: "Authentic local experience",
		},
	}
}
