package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/roamkit/tripscope/pkg/places"
)

type fakeSearcher struct {
	hits []SearchResult
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	return f.hits, f.err
}

func TestAllowlistMatchesRegistrableDomain(t *testing.T) {
	a := NewAllowlist(DefaultAllowedDomains)

	allowed := []string{
		"https://www.tripadvisor.com/Attractions-g294217",
		"https://tripadvisor.com/foo",
		"https://en.wikivoyage.org/wiki/Tokyo",
		"http://timeout.com/tokyo",
	}
	for _, u := range allowed {
		if !a.Allows(u) {
			t.Fatalf("expected %q to be allowed", u)
		}
	}

	denied := []string{
		"https://evil.com/tripadvisor.com",
		"https://tripadvisor.com.evil.com/page",
		"ftp://tripadvisor.com/page",
		"not a url",
		"",
	}
	for _, u := range denied {
		if a.Allows(u) {
			t.Fatalf("expected %q to be denied", u)
		}
	}
}

func TestSelectFiltersAndDeduplicates(t *testing.T) {
	searcher := &fakeSearcher{hits: []SearchResult{
		{URL: "https://randomblog.example/tokyo", Title: "Random"},
		{URL: "https://www.tripadvisor.com/tokyo-guide", Title: "Guide"},
		{URL: "https://www.tripadvisor.com/tokyo-guide/", Title: "Guide again"},
		{URL: "https://en.wikivoyage.org/wiki/Tokyo", Title: "Wiki"},
	}}
	s := NewSelector(searcher, nil)

	out := s.Select(context.Background(), places.Query{Location: "Tokyo"}, 5)
	if len(out) != 2 {
		t.Fatalf("expected 2 sources after filtering and dedup, got %d: %+v", len(out), out)
	}
	if out[0].Title != "Guide" || out[1].Title != "Wiki" {
		t.Fatalf("expected search order preserved, got %+v", out)
	}
	for _, src := range out {
		if src.Key == "" {
			t.Fatalf("source missing key: %+v", src)
		}
	}
}

func TestSelectCapsAtMaxSources(t *testing.T) {
	searcher := &fakeSearcher{hits: []SearchResult{
		{URL: "https://www.tripadvisor.com/a"},
		{URL: "https://www.tripadvisor.com/b"},
		{URL: "https://www.tripadvisor.com/c"},
	}}
	s := NewSelector(searcher, nil)

	out := s.Select(context.Background(), places.Query{Location: "Tokyo"}, 2)
	if len(out) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(out))
	}
}

func TestSelectEmptyOnSearchFailure(t *testing.T) {
	s := NewSelector(&fakeSearcher{err: errors.New("search backend down")}, nil)
	if out := s.Select(context.Background(), places.Query{Location: "Tokyo"}, 5); out != nil {
		t.Fatalf("expected no sources on search failure, got %+v", out)
	}
}

func TestSelectNilSearcher(t *testing.T) {
	s := NewSelector(nil, nil)
	if out := s.Select(context.Background(), places.Query{Location: "Tokyo"}, 5); out != nil {
		t.Fatalf("expected no sources without a searcher, got %+v", out)
	}
}
