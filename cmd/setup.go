package cmd

import (
	"time"

	"github.com/spf13/viper"

	"github.com/roamkit/tripscope/internal/utils"
	"github.com/roamkit/tripscope/pkg/catalog"
	"github.com/roamkit/tripscope/pkg/discovery"
	"github.com/roamkit/tripscope/pkg/extract"
	"github.com/roamkit/tripscope/pkg/sources"
	"github.com/roamkit/tripscope/pkg/store"
)

// openStore opens the cache database at the configured (or default) path,
// applying the TTL and cooldown from the config file.
func openStore(dbPath string) (*store.DB, error) {
	absPath, err := utils.GetAbsDBPath(dbPath)
	if err != nil {
		return nil, err
	}
	return store.Open(absPath, store.Options{
		CacheTTL: time.Duration(viper.GetInt("cache.ttl_days")) * 24 * time.Hour,
		Cooldown: time.Duration(viper.GetInt("blacklist.cooldown_days")) * 24 * time.Hour,
	})
}

// buildAggregator assembles the full discovery pipeline from the config.
// The selector and extractor stay nil when their API keys are missing; the
// aggregator then serves catalog and fallback data only.
func buildAggregator(db *store.DB) (*discovery.Aggregator, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}

	proxy, _ := rootCmd.PersistentFlags().GetString("proxy")

	var allowlist *sources.Allowlist
	if domains := viper.GetStringSlice("sources.allowed_domains"); len(domains) > 0 {
		allowlist = sources.NewAllowlist(domains)
	}

	var selector discovery.SourceSelector
	if key := viper.GetString("search.api_key"); key != "" {
		searcher := sources.NewWebSearcher(key, viper.GetString("search.endpoint"))
		if proxy != "" {
			if err := searcher.SetProxy(proxy); err != nil {
				return nil, err
			}
		}
		selector = sources.NewSelector(searcher, allowlist)
	} else {
		utils.Log.Debug("search.api_key not set, live source selection disabled")
	}

	var extractor extract.Extractor
	aiKey := viper.GetString("ai.api_key")
	if aiKey == "" {
		aiKey = viper.GetString("OPENAI_API_KEY")
	}
	if aiKey != "" {
		extractor, err = extract.NewLLMExtractor(extract.Config{
			APIKey:   aiKey,
			Model:    viper.GetString("ai.model"),
			Endpoint: viper.GetString("ai.endpoint"),
			Proxy:    proxy,
		})
		if err != nil {
			return nil, err
		}
	} else {
		utils.Log.Debug("ai.api_key not set, live extraction disabled")
	}

	cfg := discovery.Config{
		MaxSources:    viper.GetInt("discover.max_sources"),
		Concurrency:   viper.GetInt("discover.concurrency"),
		SourceTimeout: time.Duration(viper.GetInt("discover.source_timeout_seconds")) * time.Second,
		StaticLimit:   viper.GetInt("discover.static_limit"),
		LiveLimit:     viper.GetInt("discover.live_limit"),
	}

	return discovery.New(cat, db, selector, extractor, cfg, utils.Log), nil
}
