package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roamkit/tripscope/pkg/discovery"
	"github.com/roamkit/tripscope/pkg/places"
	"github.com/roamkit/tripscope/pkg/store"
)

type stubDiscoverer struct {
	lastQuery places.Query
	report    *discovery.Report
	err       error
}

func (s *stubDiscoverer) Discover(ctx context.Context, q places.Query) (*discovery.Report, error) {
	s.lastQuery = q
	return s.report, s.err
}

func newTestServer(t *testing.T, d Discoverer, user, pass string) *Server {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "srv.sqlite"), store.Options{})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(d, db, user, pass)
}

func TestHandleDiscover(t *testing.T) {
	stub := &stubDiscoverer{report: discovery.BuildReport(
		places.Query{Location: "Tokyo", Interests: []string{"food"}},
		[]places.Place{{Name: "Night Market", Category: "market"}},
	)}
	srv := newTestServer(t, stub, "", "")

	body := `{"location": "Tokyo", "interests": ["food"], "budget": "low"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/local/discover", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got %+v", env)
	}
	if !strings.Contains(env.Message, "Tokyo") {
		t.Fatalf("message should mention the location, got %q", env.Message)
	}
	if stub.lastQuery.Location != "Tokyo" || stub.lastQuery.Budget != "low" {
		t.Fatalf("query not forwarded: %+v", stub.lastQuery)
	}
}

func TestHandleDiscoverRejectsMissingLocation(t *testing.T) {
	srv := newTestServer(t, &stubDiscoverer{}, "", "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/local/discover", strings.NewReader(`{"interests": ["food"]}`))
	rec := httptest.NewRecorder()
	srv.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if env.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestHandleDiscoverRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t, &stubDiscoverer{}, "", "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/local/discover", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	srv.mux().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBasicAuthGuardsAPI(t *testing.T) {
	srv := newTestServer(t, &stubDiscoverer{}, "admin", "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	srv.mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	srv.mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with credentials, got %d", rec.Code)
	}

	// Health stays open for probes.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	srv.mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open health endpoint, got %d", rec.Code)
	}
}

func TestHandleSources(t *testing.T) {
	srv := newTestServer(t, &stubDiscoverer{}, "", "")
	if err := srv.DB.Put(context.Background(), "example.com--deadbeef", []places.Place{{Name: "A"}}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	rec := httptest.NewRecorder()
	srv.mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "example.com--deadbeef") {
		t.Fatalf("expected the source key in the listing, got %s", rec.Body.String())
	}
}
