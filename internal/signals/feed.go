package signals

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"trendforge/internal/logging"
	"trendforge/internal/model"
	"trendforge/internal/util"
)

// AllNiches is the feed key applied to every niche.
const AllNiches = "*"

// FeedProvider turns RSS/Atom search-trend feeds into search signals. Items
// carrying an ht:approx_traffic extension ("200,000+") report search volume.
type FeedProvider struct {
	Feeds    map[string][]string
	Fetcher  *Fetcher
	MaxItems int
}

// NewFeedProvider builds a provider over feeds keyed by niche.
func NewFeedProvider(feeds map[string][]string, f *Fetcher) *FeedProvider {
	if f == nil {
		f = NewFetcher(0)
	}
	return &FeedProvider{Feeds: feeds, Fetcher: f, MaxItems: 20}
}

func (p *FeedProvider) Name() string         { return "feed" }
func (p *FeedProvider) Source() model.Source { return model.SourceSearch }

func (p *FeedProvider) Signals(ctx context.Context, niche model.Niche, _ time.Time) ([]model.TrendSignal, error) {
	urls := append(append([]string(nil), p.Feeds[string(niche)]...), p.Feeds[AllNiches]...)
	seen := make(map[string]bool)
	var out []model.TrendSignal
	var errs []error
	for _, u := range urls {
		got, err := p.fetch(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, err)
			continue
		}
		for _, s := range got {
			key := strings.ToLower(s.Topic)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		logging.Warn("feed_failed", map[string]any{"niche": string(niche), "error": err.Error()})
	}
	return out, nil
}

func (p *FeedProvider) fetch(ctx context.Context, url string) ([]model.TrendSignal, error) {
	body, err := p.Fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	// gofeed parsers keep per-parse state
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	out := make([]model.TrendSignal, 0, len(feed.Items))
	for _, item := range feed.Items {
		topic := util.NormalizeWhitespace(cleanHTML(item.Title))
		if topic == "" {
			continue
		}
		out = append(out, model.TrendSignal{
			Topic:        topic,
			Source:       model.SourceSearch,
			SearchVolume: approxTraffic(item),
		})
		if p.MaxItems > 0 && len(out) >= p.MaxItems {
			break
		}
	}
	return out, nil
}

func approxTraffic(item *gofeed.Item) int64 {
	for _, e := range item.Extensions["ht"]["approx_traffic"] {
		if n := util.ParseCount(e.Value); n > 0 {
			return n
		}
	}
	return 0
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
