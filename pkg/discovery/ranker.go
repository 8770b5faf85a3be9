package discovery

import (
	"sort"
	"strings"

	"github.com/roamkit/tripscope/pkg/places"
)

// Scoring weights for interest matching. A tag match counts full, a category
// match half, a description mention less still.
const (
	tagWeight         = 1.0
	categoryWeight    = 0.5
	descriptionWeight = 0.3
)

// Rank scores records against the requested interests and returns them
// highest score first, deduplicated by name and capped at limit.
//
// Records that match no interest at all are excluded: no match means the
// record is not a candidate. Ties keep the original input order. With an
// empty interest set every record is retained in input order: "no stated
// interest" returns the catalog's natural order, not a scored one.
func Rank(records []places.Place, interests []string, limit int) []places.Scored {
	if limit <= 0 {
		limit = len(records)
	}

	normalized := make([]string, 0, len(interests))
	for _, in := range interests {
		if n := places.NormalizeInterest(in); n != "" {
			normalized = append(normalized, n)
		}
	}

	var scored []places.Scored
	if len(normalized) == 0 {
		for _, rec := range records {
			scored = append(scored, places.Scored{Place: rec})
		}
	} else {
		for _, rec := range records {
			if s := Score(rec, normalized); s > 0 {
				scored = append(scored, places.Scored{Place: rec, Score: s})
			}
		}
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Score > scored[j].Score
		})
	}

	seen := make(map[string]struct{}, len(scored))
	out := make([]places.Scored, 0, len(scored))
	for _, s := range scored {
		id := places.IdentityName(s.Place.Name)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Score computes the relevance of one record against normalized interests.
// Each (interest, tag) pair that matches in either substring direction adds
// the full tag weight, so a record tagged twice for an interest scores twice.
func Score(rec places.Place, normalizedInterests []string) float64 {
	category := strings.ToLower(rec.Category)
	description := strings.ToLower(rec.Description)

	tags := make([]string, 0, len(rec.Interests))
	for _, t := range rec.Interests {
		tags = append(tags, places.NormalizeInterest(t))
	}

	var score float64
	for _, interest := range normalizedInterests {
		for _, tag := range tags {
			if tag == "" {
				continue
			}
			if strings.Contains(tag, interest) || strings.Contains(interest, tag) {
				score += tagWeight
			}
		}
		if category != "" && strings.Contains(category, interest) {
			score += categoryWeight
		}
		if description != "" && strings.Contains(description, interest) {
			score += descriptionWeight
		}
	}
	return score
}
