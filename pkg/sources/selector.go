// Package sources turns a discovery query into a ranked list of candidate
// source pages, deferring to an external web-search collaborator and
// filtering everything against a pre-approved domain allow-list.
package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/roamkit/tripscope/internal/utils"
	"github.com/roamkit/tripscope/pkg/places"
	"github.com/roamkit/tripscope/pkg/store"
)

// Source is one candidate page for extraction.
type Source struct {
	Key   string
	URL   string
	Title string
}

// Selector ranks candidate sources for a query. A nil or failing searcher
// yields an empty selection, never an error: callers treat "no sources" as
// "no live data available".
type Selector struct {
	searcher  Searcher
	allowlist *Allowlist
}

func NewSelector(searcher Searcher, allowlist *Allowlist) *Selector {
	if allowlist == nil {
		allowlist = NewAllowlist(DefaultAllowedDomains)
	}
	return &Selector{searcher: searcher, allowlist: allowlist}
}

// Select returns up to maxSources allow-listed candidate sources, in the
// search collaborator's relevance order.
func (s *Selector) Select(ctx context.Context, q places.Query, maxSources int) []Source {
	if s.searcher == nil || maxSources <= 0 {
		return nil
	}

	// Ask for more hits than we need since the allow-list will drop some.
	hits, err := s.searcher.Search(ctx, buildQuery(q), maxSources*3)
	if err != nil {
		utils.Log.Warnf("source search failed for %q: %v", q.Location, err)
		return nil
	}

	seen := make(map[string]struct{})
	var out []Source
	for _, hit := range hits {
		if !s.allowlist.Allows(hit.URL) {
			utils.Log.Debugf("skipping non-allowlisted source: %s", hit.URL)
			continue
		}
		key := store.SourceKey(hit.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Source{Key: key, URL: hit.URL, Title: hit.Title})
		if len(out) == maxSources {
			break
		}
	}
	return out
}

func buildQuery(q places.Query) string {
	if len(q.Interests) == 0 {
		return fmt.Sprintf("best things to do in %s", q.Location)
	}
	return fmt.Sprintf("best %s in %s", strings.Join(q.Interests, ", "), q.Location)
}
