package store

import (
	"time"

	"github.com/roamkit/tripscope/pkg/places"
)

// BlockReason classifies why a source was blacklisted.
type BlockReason string

const (
	// ReasonQuotaExceeded means the extractor's input-size budget was
	// exhausted for this source (e.g. an oversized page).
	ReasonQuotaExceeded BlockReason = "quota_exceeded"
	// ReasonExtractionFailed means the source content could not be turned
	// into records, and retrying soon is unlikely to help.
	ReasonExtractionFailed BlockReason = "extraction_failed"
	ReasonOther            BlockReason = "other"
)

// CacheEntry is one cached fetch+extract result for a source key.
type CacheEntry struct {
	Key       string
	Payload   []places.Place
	FetchedAt time.Time
}

// SourceStatus is the combined cache + blacklist view of one key, used by
// the inspection CLI and the stats endpoint.
type SourceStatus struct {
	Key           string      `json:"key"`
	FetchedAt     time.Time   `json:"fetched_at,omitempty"`
	PayloadCount  int         `json:"payload_count"`
	Fresh         bool        `json:"fresh"`
	Blacklisted   bool        `json:"blacklisted"`
	Reason        BlockReason `json:"reason,omitempty"`
	BlacklistedAt time.Time   `json:"blacklisted_at,omitempty"`
}

// Stats summarizes the store contents.
type Stats struct {
	Cached  int `json:"cached"`
	Fresh   int `json:"fresh"`
	Blocked int `json:"blocked"`
}
