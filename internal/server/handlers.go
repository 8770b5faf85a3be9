package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/roamkit/tripscope/pkg/places"
)

// Envelope is the response shape shared by every API endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type DiscoverRequest struct {
	Location    string   `json:"location"`
	Interests   []string `json:"interests"`
	TravelDates string   `json:"travel_dates"`
	Budget      string   `json:"budget"`
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Message: "location is required"})
		return
	}

	q := places.Query{
		Location:    req.Location,
		Interests:   req.Interests,
		TravelDates: req.TravelDates,
		Budget:      req.Budget,
	}

	report, err := s.Discoverer.Discover(r.Context(), q)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Envelope{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: fmt.Sprintf("Found %d local experiences in %s", report.TotalResults, req.Location),
		Data:    report,
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.DB.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Envelope{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "ok", Data: statuses})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.GetStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Envelope{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "ok", Data: stats})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
