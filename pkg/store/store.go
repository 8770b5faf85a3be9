package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/roamkit/tripscope/pkg/places"
)

const (
	// DefaultCacheTTL is how long a cached fetch result stays fresh.
	DefaultCacheTTL = 7 * 24 * time.Hour
	// DefaultCooldown is how long a blacklisted source stays suppressed.
	DefaultCooldown = 30 * 24 * time.Hour
)

// Options tunes freshness and suppression windows. Zero values fall back to
// the defaults above.
type Options struct {
	CacheTTL time.Duration
	Cooldown time.Duration
}

// DB persists fetch results and failure records, one row per source key, so
// a single keyed lookup reveals both freshness and block status. The payload
// is stored as JSON text to keep rows inspectable with plain sqlite3.
type DB struct {
	sql      *sql.DB
	cacheTTL time.Duration
	cooldown time.Duration

	now func() time.Time
}

func Open(path string, opts Options) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sources (
  key            TEXT PRIMARY KEY,
  payload        TEXT,
  fetched_at     DATETIME,
  blacklisted    INTEGER NOT NULL DEFAULT 0 CHECK (blacklisted IN (0,1)),
  reason         TEXT,
  blacklisted_at DATETIME
);
	`); err != nil {
		db.Close()
		return nil, err
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &DB{sql: db, cacheTTL: ttl, cooldown: cooldown, now: time.Now}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Get returns the cache entry for key, or nil when none exists. It is a pure
// lookup and never triggers a fetch.
func (d *DB) Get(ctx context.Context, key string) (*CacheEntry, error) {
	var (
		payload   sql.NullString
		fetchedAt sql.NullString
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM sources WHERE key = ?", key,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !payload.Valid || !fetchedAt.Valid {
		// Row exists for blacklist bookkeeping only.
		return nil, nil
	}

	var recs []places.Place
	if err := json.Unmarshal([]byte(payload.String), &recs); err != nil {
		return nil, err
	}
	return &CacheEntry{Key: key, Payload: recs, FetchedAt: parseTime(fetchedAt.String)}, nil
}

// Put stores payload under key, overwriting any prior entry and resetting
// fetched_at to now. Blacklist columns on the row are left untouched; callers
// clear blocks explicitly on success.
func (d *DB) Put(ctx context.Context, key string, payload []places.Place) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, `
INSERT INTO sources (key, payload, fetched_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, string(data), d.now().UTC().Format(timeLayout))
	return err
}

// IsFresh reports whether entry is still within the cache TTL. Freshness is
// computed at read time so entries age out without expiry sweeps.
func (d *DB) IsFresh(entry *CacheEntry) bool {
	if entry == nil || entry.FetchedAt.IsZero() {
		return false
	}
	return d.now().Sub(entry.FetchedAt) < d.cacheTTL
}

// IsBlocked reports whether key is inside the cooldown window of its most
// recent block. An expired block reads as unblocked so callers can retry.
func (d *DB) IsBlocked(ctx context.Context, key string) (bool, error) {
	var (
		blacklisted   int
		blacklistedAt sql.NullString
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT blacklisted, blacklisted_at FROM sources WHERE key = ?", key,
	).Scan(&blacklisted, &blacklistedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if blacklisted == 0 || !blacklistedAt.Valid {
		return false, nil
	}
	return d.now().Sub(parseTime(blacklistedAt.String)) < d.cooldown, nil
}

// Block records a failure for key, overwriting any prior block. The cooldown
// window restarts from now; there is no cumulative backoff growth.
func (d *DB) Block(ctx context.Context, key string, reason BlockReason) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO sources (key, blacklisted, reason, blacklisted_at) VALUES (?, 1, ?, ?)
ON CONFLICT(key) DO UPDATE SET blacklisted = 1, reason = excluded.reason, blacklisted_at = excluded.blacklisted_at`,
		key, string(reason), d.now().UTC().Format(timeLayout))
	return err
}

// Clear removes any block for key. Cache columns are preserved.
func (d *DB) Clear(ctx context.Context, key string) error {
	_, err := d.sql.ExecContext(ctx,
		"UPDATE sources SET blacklisted = 0, reason = NULL, blacklisted_at = NULL WHERE key = ?", key)
	return err
}

// Delete drops the whole row for key, forcing a re-fetch on next use.
func (d *DB) Delete(ctx context.Context, key string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM sources WHERE key = ?", key)
	return err
}

// Purge drops every row.
func (d *DB) Purge(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM sources")
	return err
}

// List returns the combined status of every known source key, ordered by key.
func (d *DB) List(ctx context.Context) ([]SourceStatus, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT key, payload, fetched_at, blacklisted, reason, blacklisted_at FROM sources ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceStatus
	for rows.Next() {
		var (
			s             SourceStatus
			payload       sql.NullString
			fetchedAt     sql.NullString
			blacklisted   int
			reason        sql.NullString
			blacklistedAt sql.NullString
		)
		if err := rows.Scan(&s.Key, &payload, &fetchedAt, &blacklisted, &reason, &blacklistedAt); err != nil {
			return nil, err
		}
		if payload.Valid {
			var recs []places.Place
			if json.Unmarshal([]byte(payload.String), &recs) == nil {
				s.PayloadCount = len(recs)
			}
		}
		if fetchedAt.Valid {
			s.FetchedAt = parseTime(fetchedAt.String)
			s.Fresh = d.now().Sub(s.FetchedAt) < d.cacheTTL
		}
		if blacklisted == 1 && blacklistedAt.Valid {
			s.BlacklistedAt = parseTime(blacklistedAt.String)
			s.Blacklisted = d.now().Sub(s.BlacklistedAt) < d.cooldown
			s.Reason = BlockReason(reason.String)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetStats summarizes the store for the stats endpoint and CLI.
func (d *DB) GetStats(ctx context.Context) (Stats, error) {
	statuses, err := d.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for _, s := range statuses {
		if !s.FetchedAt.IsZero() {
			st.Cached++
			if s.Fresh {
				st.Fresh++
			}
		}
		if s.Blacklisted {
			st.Blocked++
		}
	}
	return st, nil
}

const timeLayout = "2006-01-02 15:04:05"

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
