package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParsePlaces(t *testing.T) {
	content := `{"places": [
		{"name": "Spice Bazaar", "category": "Market", "rating": 4.5,
		 "interests": ["Food", " street food "], "cuisine": "Turkish"},
		{"name": "  ", "category": "ghost"},
		{"name": "River Walk", "description": "A calm path", "price_range": "Free"}
	]}`

	recs := ParsePlaces(content)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records (nameless dropped), got %d", len(recs))
	}

	bazaar := recs[0]
	if bazaar.Category != "market" {
		t.Fatalf("category should be lowercased, got %q", bazaar.Category)
	}
	if bazaar.Rating != 4.5 {
		t.Fatalf("unexpected rating %v", bazaar.Rating)
	}
	if len(bazaar.Interests) != 2 || bazaar.Interests[1] != "street food" {
		t.Fatalf("interests should be normalized, got %v", bazaar.Interests)
	}
	if bazaar.Extra["cuisine"] != "Turkish" {
		t.Fatalf("unknown string fields should land in Extra, got %v", bazaar.Extra)
	}

	if recs[1].Name != "River Walk" || recs[1].PriceRange != "Free" {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
}

func TestParsePlacesGarbage(t *testing.T) {
	for _, content := range []string{"", "not json", `{"places": {}}`, `{"other": []}`} {
		if recs := ParsePlaces(content); len(recs) != 0 {
			t.Fatalf("expected no records for %q, got %+v", content, recs)
		}
	}
}

func TestNewLLMExtractorRequiresKey(t *testing.T) {
	if _, err := NewLLMExtractor(Config{}); err == nil {
		t.Fatal("expected an error without an API key")
	}
}

func TestLLMExtractorEndToEnd(t *testing.T) {
	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>Guide</title></head><body><p>Great market downtown.</p></body></html>"))
	}))
	defer pageSrv.Close()

	var gotAuth string
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{
					"content": `{"places": [{"name": "Spice Bazaar", "category": "market"}]}`,
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer llmSrv.Close()

	ex, err := NewLLMExtractor(Config{APIKey: "test-key", Endpoint: llmSrv.URL})
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	recs, err := ex.Extract(context.Background(), pageSrv.URL, "find markets")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Name != "Spice Bazaar" {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestLLMExtractorEmptyAnswerIsBadOutput(t *testing.T) {
	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>nothing to see</p></body></html>"))
	}))
	defer pageSrv.Close()

	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"places": []}`}},
			},
		})
	}))
	defer llmSrv.Close()

	ex, err := NewLLMExtractor(Config{APIKey: "test-key", Endpoint: llmSrv.URL})
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	_, err = ex.Extract(context.Background(), pageSrv.URL, "find markets")
	var xerr *ExtractionError
	if !errors.As(err, &xerr) || xerr.Reason != ReasonBadOutput {
		t.Fatalf("expected bad_output, got %v", err)
	}
}
