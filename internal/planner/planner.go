// Package planner runs the weekly planning pass: collect signals, rank them,
// lay out the calendar, then persist, publish and export the result.
package planner

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"trendforge/internal/analytics"
	"trendforge/internal/cache"
	"trendforge/internal/config"
	"trendforge/internal/events"
	"trendforge/internal/logging"
	"trendforge/internal/metrics"
	"trendforge/internal/model"
	"trendforge/internal/rank"
	"trendforge/internal/report"
	"trendforge/internal/schedule"
	"trendforge/internal/signals"
	"trendforge/internal/store"
)

// Planner holds the collaborators of a planning run. Store, Publisher and
// Cache are optional.
type Planner struct {
	Channels  []model.Channel
	Providers []signals.Provider
	Store     store.Store
	Publisher events.Publisher
	Cache     *cache.Cache

	Days      int
	TopN      int
	Parallel  bool
	Seed      uint64
	Times     schedule.Overrides
	Location  *time.Location
	OutputDir string
	Now       func() time.Time
}

// Plan is one channel's planning output.
type Plan struct {
	Channel       model.Channel         `json:"channel"`
	Opportunities []model.Opportunity   `json:"opportunities"`
	Calendar      []model.CalendarEntry `json:"calendar"`
	Projection    analytics.Projection  `json:"projection"`
	Timeline      analytics.Timeline    `json:"monetization_timeline"`
}

// Result summarises a RunOnce pass. Plans are in channel order; failed channels are absent.
type Result struct {
	RunID string `json:"run_id"`
	Plans []Plan `json:"plans"`
	File  string `json:"file,omitempty"`
}

// New wires a planner from configuration.
func New(cfg config.Config, providers []signals.Provider, st store.Store, pub events.Publisher, c *cache.Cache) (*Planner, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Planner{
		Channels:  cfg.Channels,
		Providers: providers,
		Store:     st,
		Publisher: pub,
		Cache:     c,
		Days:      cfg.Schedule.Days,
		TopN:      cfg.Planner.TopN,
		Parallel:  cfg.Planner.Parallel,
		Seed:      cfg.Planner.Seed,
		Times:     cfg.Schedule.PostingTimes,
		Location:  loc,
		OutputDir: cfg.OutputDir,
		Now:       time.Now,
	}, nil
}

func (p *Planner) now() time.Time {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	if p.Location != nil {
		now = now.In(p.Location)
	}
	return now
}

// Channel looks up a configured channel by id.
func (p *Planner) Channel(id string) (model.Channel, bool) {
	for _, ch := range p.Channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return model.Channel{}, false
}

// Opportunities collects and ranks signals for ch, keeping the top TopN.
func (p *Planner) Opportunities(ctx context.Context, ch model.Channel) ([]model.Opportunity, error) {
	sigs, err := signals.Collect(ctx, p.Providers, ch.Niche, p.now())
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", ch.ID, err)
	}
	opps, err := rank.RankOpportunities(ch, sigs)
	if err != nil {
		return nil, err
	}
	top := p.TopN
	if top == 0 {
		top = rank.DefaultTop
	}
	return rank.Top(opps, top), nil
}

// PlanChannel ranks opportunities for ch and lays them out over days.
func (p *Planner) PlanChannel(ctx context.Context, ch model.Channel, days int) (Plan, error) {
	opps, err := p.Opportunities(ctx, ch)
	if err != nil {
		return Plan{}, err
	}
	if days == 0 {
		days = p.Days
	}
	if days == 0 {
		days = 7
	}
	b := schedule.Builder{Rand: p.rngFor(ch), Now: p.now, Times: p.Times}
	entries, err := b.Build(ch, opps, days)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Channel:       ch,
		Opportunities: opps,
		Calendar:      entries,
		Projection:    analytics.Summarize(entries),
		Timeline:      analytics.MonetizationTimeline(ch, p.now()),
	}, nil
}

// rngFor gives each channel its own source. A zero seed uses the global source.
func (p *Planner) rngFor(ch model.Channel) schedule.IntN {
	if p.Seed == 0 {
		return nil
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(ch.ID))
	return rand.New(rand.NewPCG(p.Seed, h.Sum64()))
}

// RunOnce plans every channel. A failing channel is logged and skipped; its
// error is joined into the returned error.
func (p *Planner) RunOnce(ctx context.Context) (Result, error) {
	start := time.Now()
	metrics.PlanRuns.Inc()
	defer metrics.ObservePlanDuration(start)

	res := Result{RunID: uuid.NewString()}
	plans := make([]*Plan, len(p.Channels))
	var (
		mu   sync.Mutex
		errs []error
	)
	planOne := func(i int, ch model.Channel) {
		plan, err := p.planAndStore(ctx, res.RunID, ch)
		if err != nil {
			logging.Error("plan_channel_error", map[string]any{"run_id": res.RunID, "channel": ch.ID, "error": err.Error()})
			mu.Lock()
			errs = append(errs, fmt.Errorf("channel %s: %w", ch.ID, err))
			mu.Unlock()
			return
		}
		plans[i] = &plan
	}

	if p.Parallel {
		g, _ := errgroup.WithContext(ctx)
		for i, ch := range p.Channels {
			g.Go(func() error {
				planOne(i, ch)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, ch := range p.Channels {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				break
			}
			planOne(i, ch)
		}
	}

	calendars := make(map[string][]model.CalendarEntry)
	for _, plan := range plans {
		if plan == nil {
			continue
		}
		res.Plans = append(res.Plans, *plan)
		calendars[plan.Channel.ID] = plan.Calendar
	}
	if p.OutputDir != "" && len(calendars) > 0 {
		path, err := report.WriteCalendarFile(p.OutputDir, p.now(), calendars)
		if err != nil {
			errs = append(errs, fmt.Errorf("export calendar: %w", err))
		} else {
			res.File = path
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		metrics.PlanErrors.Inc()
	}
	logging.Info("plan_run", map[string]any{
		"run_id":   res.RunID,
		"channels": len(p.Channels),
		"planned":  len(res.Plans),
		"failed":   len(errs),
		"file":     res.File,
	})
	return res, err
}

func (p *Planner) planAndStore(ctx context.Context, runID string, ch model.Channel) (Plan, error) {
	plan, err := p.PlanChannel(ctx, ch, p.Days)
	if err != nil {
		return Plan{}, err
	}
	if p.Store != nil {
		if err := p.Store.SaveOpportunities(ctx, runID, ch.ID, p.now(), plan.Opportunities); err != nil {
			return Plan{}, fmt.Errorf("save opportunities: %w", err)
		}
		if err := p.Store.SaveCalendar(ctx, plan.Calendar); err != nil {
			return Plan{}, fmt.Errorf("save calendar: %w", err)
		}
	}
	if err := p.Cache.Delete(ctx, cache.OpportunitiesKey(ch.ID)); err != nil {
		logging.Warn("cache_invalidate_failed", map[string]any{"channel": ch.ID, "error": err.Error()})
	}
	if p.Publisher != nil {
		ev := events.CalendarEvent{
			RunID:            runID,
			ChannelID:        ch.ID,
			GeneratedAt:      p.now().UTC(),
			ProjectedRevenue: plan.Projection.TotalRevenue,
			Entries:          plan.Calendar,
		}
		if err := p.Publisher.PublishCalendar(ctx, ev); err != nil {
			logging.Warn("publish_failed", map[string]any{"channel": ch.ID, "error": err.Error()})
		}
	}
	metrics.SetCalendar(ch.ID, len(plan.Calendar), plan.Projection.TotalRevenue)
	logging.Info("plan_channel", map[string]any{
		"run_id":            runID,
		"channel":           ch.ID,
		"opportunities":     len(plan.Opportunities),
		"entries":           len(plan.Calendar),
		"projected_revenue": plan.Projection.TotalRevenue,
	})
	return plan, nil
}

// RunLoop runs RunOnce on a ticker until ctx is cancelled.
func (p *Planner) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("planner: interval must be positive, got %s", interval)
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	// run immediately
	if _, err := p.RunOnce(ctx); err != nil {
		logging.Error("plan_once_error", map[string]any{"error": err.Error()})
	}
	for {
		select {
		case <-ctx.Done():
			logging.Info("plan_loop_stop", nil)
			return ctx.Err()
		case <-t.C:
			if _, err := p.RunOnce(ctx); err != nil {
				logging.Error("plan_once_error", map[string]any{"error": err.Error()})
			}
		}
	}
}
