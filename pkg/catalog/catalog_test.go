package catalog

import (
	"testing"
)

func TestLoadParsesEmbeddedData(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("embedded catalog failed to parse: %v", err)
	}
	if got := len(c.Locations()); got != 11 {
		t.Fatalf("expected 11 covered cities, got %d", got)
	}
}

func TestNormalizeLocation(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Tokyo", "tokyo"},
		{"  Tokyo  ", "tokyo"},
		{"Tokyo, Japan", "tokyo"},
		{"NEW YORK", "new york"},
		{"new   york", "new york"},
		{"New York, NY, USA", "new york"},
	}
	for _, c := range cases {
		if got := NormalizeLocation(c.in); got != c.want {
			t.Fatalf("NormalizeLocation(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLookupCoversMultiWordCities(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	recs, ok := c.Lookup("New York, USA")
	if !ok {
		t.Fatal("expected coverage for New York")
	}
	if len(recs) == 0 {
		t.Fatal("expected places for New York")
	}

	if _, ok := c.Lookup("Eldoria"); ok {
		t.Fatal("unexpected coverage for an unknown city")
	}
}

func TestCatalogRecordsAreComplete(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	for _, loc := range c.Locations() {
		recs, ok := c.Lookup(loc)
		if !ok || len(recs) == 0 {
			t.Fatalf("city %q listed but empty", loc)
		}
		if c.Country(loc) == "" {
			t.Fatalf("city %q missing country", loc)
		}
		for _, p := range recs {
			if p.Name == "" || p.Category == "" {
				t.Fatalf("incomplete record in %q: %+v", loc, p)
			}
			if p.Rating <= 0 || p.Rating > 5 {
				t.Fatalf("implausible rating in %q: %+v", loc, p)
			}
			if len(p.Interests) == 0 {
				t.Fatalf("record without interest tags in %q: %+v", loc, p)
			}
		}
	}
}
