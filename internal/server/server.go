package server

import (
	"context"
	"log"
	"net/http"

	"github.com/roamkit/tripscope/pkg/discovery"
	"github.com/roamkit/tripscope/pkg/places"
	"github.com/roamkit/tripscope/pkg/store"
)

// Discoverer answers discovery queries. *discovery.Aggregator satisfies it;
// tests can substitute a stub.
type Discoverer interface {
	Discover(ctx context.Context, q places.Query) (*discovery.Report, error)
}

type Server struct {
	Discoverer Discoverer
	DB         *store.DB
	Username   string
	Password   string
}

func New(d Discoverer, db *store.DB, user, pass string) *Server {
	return &Server{
		Discoverer: d,
		DB:         db,
		Username:   user,
		Password:   pass,
	}
}

func (s *Server) Start(addr string) error {
	mux := s.mux()
	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/local/discover", s.basicAuth(s.handleDiscover))
	mux.HandleFunc("GET /api/sources", s.basicAuth(s.handleSources))
	mux.HandleFunc("GET /api/stats", s.basicAuth(s.handleStats))
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
