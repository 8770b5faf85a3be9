package discovery

import (
	"github.com/roamkit/tripscope/pkg/places"
)

// Event is a sample happening included with every report.
type Event struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

// Deal is a sample promotion included with every report.
type Deal struct {
	Description string `json:"description"`
	Discount    string `json:"discount"`
	Expires     string `json:"expires"`
}

// Restaurant is a food-focused summary row derived from the result set.
type Restaurant struct {
	Name       string  `json:"name"`
	Cuisine    string  `json:"cuisine"`
	Rating     float64 `json:"rating,omitempty"`
	PriceRange string  `json:"price_range,omitempty"`
	Location   string  `json:"location"`
}

// Attraction is a sightseeing summary row derived from the result set.
type Attraction struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating,omitempty"`
	Description string  `json:"description,omitempty"`
	Location    string  `json:"location"`
}

// Report is the full discovery response: the ranked experiences plus the
// derived category groupings and the static extras.
type Report struct {
	Location     string         `json:"location"`
	Interests    []string       `json:"interests"`
	TotalResults int            `json:"total_results"`
	Experiences  []places.Place `json:"experiences"`
	Events       []Event        `json:"events"`
	Restaurants  []Restaurant   `json:"restaurants"`
	Attractions  []Attraction   `json:"attractions"`
	Deals        []Deal         `json:"deals"`
}

// BuildReport assembles a report from a final, already-ranked result set.
// The events and deals lists are fixed so reports are deterministic.
func BuildReport(q places.Query, results []places.Place) *Report {
	r := &Report{
		Location:     q.Location,
		Interests:    q.Interests,
		TotalResults: len(results),
		Experiences:  results,
		Events:       sampleEvents(q.Location),
		Deals:        sampleDeals(),
	}
	if r.Interests == nil {
		r.Interests = []string{}
	}
	if r.Experiences == nil {
		r.Experiences = []places.Place{}
	}

	for _, p := range results {
		switch p.Category {
		case "restaurant", "food", "market":
			cuisine := "Local"
			if c, ok := p.Extra["cuisine"]; ok {
				cuisine = c
			}
			r.Restaurants = append(r.Restaurants, Restaurant{
				Name:       p.Name,
				Cuisine:    cuisine,
				Rating:     p.Rating,
				PriceRange: p.PriceRange,
				Location:   q.Location,
			})
		case "landmark", "museum", "historical", "park":
			r.Attractions = append(r.Attractions, Attraction{
				Name:        p.Name,
				Category:    p.Category,
				Rating:      p.Rating,
				Description: p.Description,
				Location:    q.Location,
			})
		}
	}
	return r
}

func sampleEvents(location string) []Event {
	return []Event{
		{Name: "Local Food Festival", Date: "This weekend", Location: location},
		{Name: "Art Gallery Opening", Date: "Next Friday", Location: location},
		{Name: "Cultural Performance", Date: "Every evening", Location: location},
	}
}

func sampleDeals() []Deal {
	return []Deal{
		{Description: "10% off museum admissions", Discount: "10%", Expires: "End of month"},
		{Description: "Free walking tour booking", Discount: "100%", Expires: "Limited time"},
		{Description: "Happy hour at local restaurants", Discount: "20%", Expires: "Daily 4-6 PM"},
	}
}
