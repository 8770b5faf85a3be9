// Package discovery coordinates the catalog, source selection, cached
// fetching and relevance ranking into a single "discover candidates for a
// location" operation.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/roamkit/tripscope/pkg/catalog"
	"github.com/roamkit/tripscope/pkg/extract"
	"github.com/roamkit/tripscope/pkg/places"
	"github.com/roamkit/tripscope/pkg/sources"
	"github.com/roamkit/tripscope/pkg/store"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// SourceSelector yields candidate sources for a query. Empty means "no live
// data available", never a fatal condition.
type SourceSelector interface {
	Select(ctx context.Context, q places.Query, maxSources int) []sources.Source
}

// Config tunes one Aggregator. Zero values fall back to the defaults below.
type Config struct {
	// MaxSources caps how many sources one request may fetch.
	MaxSources int
	// Concurrency bounds the parallel fan-out across sources.
	Concurrency int
	// SourceTimeout caps each individual fetch+extract so one slow source
	// cannot stall the whole request.
	SourceTimeout time.Duration
	// StaticLimit and LiveLimit cap the result set for the catalog path and
	// the live-scrape path. They are separate knobs, not one shared cap.
	StaticLimit int
	LiveLimit   int
}

const (
	defaultMaxSources    = 5
	defaultConcurrency   = 4
	defaultSourceTimeout = 20 * time.Second
	defaultStaticLimit   = 10
	defaultLiveLimit     = 12
)

func (c Config) withDefaults() Config {
	if c.MaxSources <= 0 {
		c.MaxSources = defaultMaxSources
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = defaultSourceTimeout
	}
	if c.StaticLimit <= 0 {
		c.StaticLimit = defaultStaticLimit
	}
	if c.LiveLimit <= 0 {
		c.LiveLimit = defaultLiveLimit
	}
	return c
}

// Aggregator answers discovery requests. It holds no per-request state and
// is safe for concurrent use; everything shared lives in the store.
type Aggregator struct {
	catalog   *catalog.Catalog
	store     *store.DB
	selector  SourceSelector
	extractor extract.Extractor
	cfg       Config
	log       Logger

	// flight collapses concurrent fetches of the same source key into one.
	flight singleflight.Group
}

func New(cat *catalog.Catalog, db *store.DB, selector SourceSelector, extractor extract.Extractor, cfg Config, log Logger) *Aggregator {
	if log == nil {
		log = nopLogger{}
	}
	return &Aggregator{
		catalog:   cat,
		store:     db,
		selector:  selector,
		extractor: extractor,
		cfg:       cfg.withDefaults(),
		log:       log,
	}
}

// Discover produces a ranked, deduplicated report for the query. It only
// fails on context cancellation; "no data found" funnels into the generic
// fallback set instead of an error.
func (a *Aggregator) Discover(ctx context.Context, q places.Query) (*Report, error) {
	if recs, ok := a.catalog.Lookup(q.Location); ok {
		a.log.Debugf("catalog hit for %q (%d places)", q.Location, len(recs))
		ranked := Rank(recs, q.Interests, a.cfg.StaticLimit)
		return BuildReport(q, toPlaces(ranked)), nil
	}

	a.log.Debugf("no catalog coverage for %q, selecting live sources", q.Location)

	var collected []places.Place
	if a.selector != nil && a.extractor != nil {
		srcs := a.selector.Select(ctx, q, a.cfg.MaxSources)
		if len(srcs) > 0 {
			collected = a.fetchAll(ctx, q, srcs)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(collected) > 0 {
		ranked := Rank(collected, q.Interests, a.cfg.LiveLimit)
		if len(ranked) > 0 {
			return BuildReport(q, toPlaces(ranked)), nil
		}
	}

	a.log.Infof("falling back to generic places for %q", q.Location)
	return BuildReport(q, FallbackPlaces(q.Location)), nil
}

// fetchAll fans out across sources with bounded parallelism and accumulates
// every payload record in source order. Individual source failures are
// absorbed here; they never fail the request.
func (a *Aggregator) fetchAll(ctx context.Context, q places.Query, srcs []sources.Source) []places.Place {
	results := make([][]places.Place, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			results[i] = a.fetchSource(gctx, q, src)
			return nil
		})
	}
	_ = g.Wait()

	var out []places.Place
	for _, recs := range results {
		out = append(out, recs...)
	}
	return out
}

// fetchSource resolves one source through the blacklist → cache → extract
// chain. Concurrent requests for the same key share a single resolution.
func (a *Aggregator) fetchSource(ctx context.Context, q places.Query, src sources.Source) []places.Place {
	v, err, _ := a.flight.Do(src.Key, func() (interface{}, error) {
		return a.resolveSource(ctx, q, src), nil
	})
	if err != nil || v == nil {
		return nil
	}
	return v.([]places.Place)
}

func (a *Aggregator) resolveSource(ctx context.Context, q places.Query, src sources.Source) []places.Place {
	blocked, err := a.store.IsBlocked(ctx, src.Key)
	if err != nil {
		a.log.Warnf("blacklist lookup failed for %s: %v", src.Key, err)
	}
	if blocked {
		a.log.Debugf("skipping blacklisted source %s", src.URL)
		return nil
	}

	entry, err := a.store.Get(ctx, src.Key)
	if err != nil {
		a.log.Warnf("cache lookup failed for %s: %v", src.Key, err)
	}
	if entry != nil && a.store.IsFresh(entry) {
		a.log.Debugf("cache hit for %s (%d records)", src.URL, len(entry.Payload))
		return entry.Payload
	}

	fctx, cancel := context.WithTimeout(ctx, a.cfg.SourceTimeout)
	defer cancel()

	recs, err := a.extractor.Extract(fctx, src.URL, extractionInstruction(q))
	if err != nil {
		a.handleExtractionFailure(ctx, src, err)
		return nil
	}

	if err := a.store.Put(ctx, src.Key, recs); err != nil {
		a.log.Warnf("cache write failed for %s: %v", src.Key, err)
	}
	if err := a.store.Clear(ctx, src.Key); err != nil {
		a.log.Warnf("blacklist clear failed for %s: %v", src.Key, err)
	}
	a.log.Infof("extracted %d records from %s", len(recs), src.URL)
	return recs
}

// handleExtractionFailure blacklists sources that will keep failing and
// skips the rest. Transient problems (network, model hiccups) must not cause
// a 30-day suppression.
func (a *Aggregator) handleExtractionFailure(ctx context.Context, src sources.Source, err error) {
	var xerr *extract.ExtractionError
	if !errors.As(err, &xerr) {
		a.log.Warnf("skipping source %s: %v", src.URL, err)
		return
	}
	switch xerr.Reason {
	case extract.ReasonBudget:
		a.log.Warnf("blacklisting %s: input-size budget exceeded", src.URL)
		if berr := a.store.Block(ctx, src.Key, store.ReasonQuotaExceeded); berr != nil {
			a.log.Warnf("blacklist write failed for %s: %v", src.Key, berr)
		}
	case extract.ReasonMalformed:
		a.log.Warnf("blacklisting %s: unextractable content", src.URL)
		if berr := a.store.Block(ctx, src.Key, store.ReasonExtractionFailed); berr != nil {
			a.log.Warnf("blacklist write failed for %s: %v", src.Key, berr)
		}
	default:
		a.log.Warnf("skipping source %s: %v", src.URL, err)
	}
}

func extractionInstruction(q places.Query) string {
	if len(q.Interests) == 0 {
		return fmt.Sprintf("Find recommended places, activities and experiences in %s", q.Location)
	}
	return fmt.Sprintf("Find places, activities and experiences in %s matching these interests: %s",
		q.Location, strings.Join(q.Interests, ", "))
}

func toPlaces(scored []places.Scored) []places.Place {
	out := make([]places.Place, len(scored))
	for i, s := range scored {
		out[i] = s.Place
	}
	return out
}
