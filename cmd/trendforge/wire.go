package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"trendforge/internal/cache"
	"trendforge/internal/config"
	"trendforge/internal/events"
	"trendforge/internal/logging"
	"trendforge/internal/model"
	"trendforge/internal/planner"
	"trendforge/internal/signals"
	"trendforge/internal/store"
	"trendforge/internal/youtube"
)

// app is the set of adapters a command works with.
type app struct {
	planner *planner.Planner
	store   store.Store
	pub     events.Publisher
	cache   *cache.Cache
}

func openApp(ctx context.Context, c config.Config) (*app, error) {
	providers, err := buildProviders(ctx, c)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, c.Storage)
	if err != nil {
		return nil, err
	}
	pub, err := buildPublisher(c.Events)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	rc := cache.New(c.Cache.RedisURL, c.CacheTTL())
	p, err := planner.New(c, providers, st, pub, rc)
	if err != nil {
		_ = rc.Close()
		pub.Close()
		_ = st.Close()
		return nil, err
	}
	return &app{planner: p, store: st, pub: pub, cache: rc}, nil
}

func (a *app) Close() {
	_ = a.cache.Close()
	a.pub.Close()
	if err := a.store.Close(); err != nil {
		logging.Warn("store_close_failed", map[string]any{"error": err.Error()})
	}
}

// buildProviders assembles the signal sources in source order: the platform
// chart and catalog, then search (catalog and feeds), then competitors and
// seasonal topics.
func buildProviders(ctx context.Context, c config.Config) ([]signals.Provider, error) {
	cat, err := signals.LoadCatalog(c.Signals.CatalogPath)
	switch {
	case c.Signals.CatalogPath == "" || errors.Is(err, fs.ErrNotExist):
		logging.Warn("catalog_missing", map[string]any{"path": c.Signals.CatalogPath, "fallback": "built-in"})
		cat = signals.DefaultCatalog()
	case err != nil:
		return nil, err
	}

	var providers []signals.Provider
	if c.Signals.Trending {
		if c.YouTube.APIKey == "" {
			logging.Warn("trending_disabled", map[string]any{"reason": "missing YOUTUBE_API_KEY"})
		} else {
			svc, err := youtube.NewReadService(ctx, c.YouTube.APIKey)
			if err != nil {
				return nil, fmt.Errorf("trending provider: %w", err)
			}
			providers = append(providers, youtube.NewTrendingProvider(svc, c.Signals.RegionCode, c.Signals.TrendingSize))
		}
	}
	var feeds signals.Provider
	if len(c.Signals.Feeds) > 0 {
		feeds = signals.NewFeedProvider(c.Signals.Feeds, signals.NewFetcher(c.Signals.FeedRPS))
	}
	for _, p := range cat.Providers() {
		if feeds != nil && (p.Source() == model.SourceCompetitor || p.Source() == model.SourceSeasonal) {
			providers = append(providers, feeds)
			feeds = nil
		}
		providers = append(providers, p)
	}
	if feeds != nil {
		providers = append(providers, feeds)
	}
	return providers, nil
}

func buildPublisher(c config.EventsConfig) (events.Publisher, error) {
	if c.NATSURL == "" {
		return events.Nop{}, nil
	}
	return events.Connect(c.NATSURL, c.SubjectPrefix)
}
