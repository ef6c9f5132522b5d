// Package signals gathers raw trend signals for a niche from the configured sources.
package signals

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"trendforge/internal/logging"
	"trendforge/internal/metrics"
	"trendforge/internal/model"
	"trendforge/internal/util"
)

// Provider reports trend signals for one niche.
type Provider interface {
	Name() string
	Source() model.Source
	Signals(ctx context.Context, niche model.Niche, now time.Time) ([]model.TrendSignal, error)
}

// Collect queries every provider concurrently and concatenates the results in
// provider order. A failing provider is logged and skipped; a malformed signal
// fails the whole collection.
func Collect(ctx context.Context, providers []Provider, niche model.Niche, now time.Time) ([]model.TrendSignal, error) {
	results := make([][]model.TrendSignal, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			got, err := p.Signals(gctx, niche, now)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				metrics.IncProviderError(p.Name())
				logging.Warn("provider_failed", map[string]any{"provider": p.Name(), "niche": string(niche), "error": err.Error()})
				return nil
			}
			for j := range got {
				if got[j].Source == "" {
					got[j].Source = p.Source()
				}
				got[j].Topic = util.NormalizeWhitespace(got[j].Topic)
			}
			logging.Debug("provider_signals", map[string]any{"provider": p.Name(), "niche": string(niche), "count": len(got)})
			results[i] = got
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.TrendSignal
	for i, got := range results {
		for j, s := range got {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("provider %s signal %d: %w", providers[i].Name(), j, err)
			}
		}
		metrics.AddSignals(string(providers[i].Source()), len(got))
		out = append(out, got...)
	}
	return out, nil
}
