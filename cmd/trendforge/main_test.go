package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trendforge/internal/analytics"
	"trendforge/internal/config"
	"trendforge/internal/model"
	"trendforge/internal/planner"
	"trendforge/internal/quota"
	"trendforge/internal/signals"
	"trendforge/internal/store/sqlite"
)

func TestLoadConfigMissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("TRENDFORGE_STORAGE_DRIVER", "postgres")
	t.Setenv("TRENDFORGE_SCHEDULE_DAYS", "14")
	c, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), newFlags())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(c.Channels) != len(config.Default().Channels) {
		t.Fatalf("expected default channels, got %d", len(c.Channels))
	}
	if c.Storage.Driver != "postgres" || c.Schedule.Days != 14 {
		t.Fatalf("env overrides not applied: driver=%q days=%d", c.Storage.Driver, c.Schedule.Days)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("TRENDFORGE_SCHEDULE_TIMEZONE", "Mars/Olympus_Mons")
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), newFlags()); err == nil {
		t.Fatalf("expected invalid timezone error")
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trendforge.yaml")
	c := config.Default()
	c.Channels = c.Channels[:1]
	c.OutputDir = "./exports"
	if err := config.Save(path, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := loadConfig(path, newFlags())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(got.Channels) != 1 || got.OutputDir != "./exports" {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestWriteStarterRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trendforge.yaml")
	catalog := filepath.Join(dir, "signals", "signals.yaml")
	if _, _, err := writeStarter(path, catalog, false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, _, err := writeStarter(path, catalog, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, _, err := writeStarter(path, catalog, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}

	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if c.Signals.CatalogPath != catalog {
		t.Fatalf("catalog path = %q, want %q", c.Signals.CatalogPath, catalog)
	}
	cat, err := signals.LoadCatalog(catalog)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(cat.Platform[model.NicheTechnology]) == 0 {
		t.Fatalf("expected starter topics in catalog")
	}
}

func TestBuildProvidersFallsBackToBuiltInCatalog(t *testing.T) {
	c := config.Default()
	c.Signals.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	c.Signals.Feeds = map[string][]string{"*": {"http://127.0.0.1:0/rss"}}
	c.Signals.Trending = true
	c.YouTube.APIKey = ""

	providers, err := buildProviders(context.Background(), c)
	if err != nil {
		t.Fatalf("buildProviders: %v", err)
	}
	var names []string
	for _, p := range providers {
		names = append(names, p.Name())
	}
	want := "catalog-platform,catalog-search,feed,catalog-competitor,seasonal"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("providers = %s, want %s", got, want)
	}
}

func TestBuildProvidersPutsTrendingFirst(t *testing.T) {
	c := config.Default()
	c.Signals.CatalogPath = ""
	c.Signals.Trending = true
	c.YouTube.APIKey = "test-key"

	providers, err := buildProviders(context.Background(), c)
	if err != nil {
		t.Fatalf("buildProviders: %v", err)
	}
	if len(providers) != 5 {
		t.Fatalf("expected trending plus 4 catalog providers, got %d", len(providers))
	}
	if providers[0].Source() != model.SourcePlatform || providers[1].Name() != "catalog-platform" {
		t.Fatalf("trending chart must lead: %s, %s", providers[0].Name(), providers[1].Name())
	}
}

func TestBuildProvidersRejectsBrokenCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.yaml")
	if err := os.WriteFile(path, []byte("platform: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := config.Default()
	c.Signals.CatalogPath = path
	if _, err := buildProviders(context.Background(), c); err == nil {
		t.Fatalf("expected catalog parse error")
	}
}

func seedCalendar(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	entries := []model.CalendarEntry{
		{ChannelID: "tech", Date: "2025-01-06", Time: "12:00", Topic: "Earlier today"},
		{ChannelID: "tech", Date: "2025-01-07", Time: "18:00", Topic: "Tomorrow"},
		{ChannelID: "tech", Date: "2025-01-08", Time: "18:00", Topic: "Day after"},
		{ChannelID: "health", Date: "2025-01-06", Time: "21:00", Topic: "Other channel"},
	}
	if err := db.SaveCalendar(context.Background(), entries); err != nil {
		t.Fatalf("save: %v", err)
	}
	return db
}

func TestNextEntrySkipsPastSlots(t *testing.T) {
	db := seedCalendar(t)
	ctx := context.Background()
	ch := model.Channel{ID: "tech", AgeGroup: model.AgeKids}

	now := time.Date(2025, 1, 6, 15, 30, 0, 0, time.UTC)
	got, err := nextEntry(ctx, db, ch, now, time.UTC)
	if err != nil {
		t.Fatalf("nextEntry: %v", err)
	}
	if got.Topic != "Tomorrow" {
		t.Fatalf("next entry = %q, want Tomorrow", got.Topic)
	}

	// Past the stored calendar the next kids peak day (Saturday) is used.
	got, err = nextEntry(ctx, db, ch, now.AddDate(0, 0, 3), time.UTC)
	if err != nil {
		t.Fatalf("nextEntry fallback: %v", err)
	}
	if got.Topic != "" || got.Date != "2025-01-11" || got.ChannelID != "tech" {
		t.Fatalf("unexpected fallback entry: %+v", got)
	}
}

func TestNextEntryConsecutiveUploadsUseDistinctSlots(t *testing.T) {
	db := seedCalendar(t)
	ctx := context.Background()
	ch := model.Channel{ID: "tech"}
	now := time.Date(2025, 1, 6, 15, 30, 0, 0, time.UTC)

	var topics []string
	for i := 0; i < 2; i++ {
		e, err := nextEntry(ctx, db, ch, now, time.UTC)
		if err != nil {
			t.Fatalf("nextEntry %d: %v", i, err)
		}
		at, err := e.At(time.UTC)
		if err != nil {
			t.Fatal(err)
		}
		if err := quota.RecordSlot(ctx, db, ch.ID, at); err != nil {
			t.Fatalf("RecordSlot: %v", err)
		}
		topics = append(topics, e.Topic)
	}
	if got := strings.Join(topics, ","); got != "Tomorrow,Day after" {
		t.Fatalf("slots = %s, want Tomorrow,Day after", got)
	}
}

func TestPrintOpportunities(t *testing.T) {
	var buf bytes.Buffer
	printOpportunities(&buf, nil)
	if !strings.Contains(buf.String(), "no opportunities") {
		t.Fatalf("unexpected output %q", buf.String())
	}
	buf.Reset()
	printOpportunities(&buf, []model.Opportunity{{
		TrendSignal:           model.TrendSignal{Topic: "Best AI Tools", Source: model.SourcePlatform},
		ViralScore:            16.5,
		MonetizationPotential: 7,
		CompetitionLevel:      4.5,
	}})
	if !strings.Contains(buf.String(), " 1. Best AI Tools") || !strings.Contains(buf.String(), "combined= 19.00") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPrintPlanShowsTimeline(t *testing.T) {
	ch := model.Channel{ID: "kids", Niche: model.NicheEducationKids}
	plan := planner.Plan{
		Channel:  ch,
		Calendar: []model.CalendarEntry{{Date: "2025-01-06", Time: "09:00", Topic: "Counting Songs", EstimatedViews: 1200, EstimatedRevenue: 1.8}},
		Timeline: analytics.MonetizationTimeline(ch, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)),
	}
	plan.Projection = analytics.Summarize(plan.Calendar)
	var buf bytes.Buffer
	printPlan(&buf, plan)
	out := buf.String()
	if !strings.Contains(out, "Counting Songs") || !strings.Contains(out, "monetization: ~144 days (2025-05-30)") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPrintMonetization(t *testing.T) {
	ch := model.Channel{ID: "tech", Niche: model.NicheTechnology}
	tl := analytics.MonetizationTimeline(ch, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	r := analytics.TimeToMonetization(analytics.Progress{Subscribers: 45, WatchHours: 120, Videos: 8}, analytics.Growth{})
	var buf bytes.Buffer
	printMonetization(&buf, tl, r)
	out := buf.String()
	if !strings.Contains(out, "180 days (by 2025-07-05)") || !strings.Contains(out, "155 weeks remaining, bottleneck watch_hours") {
		t.Fatalf("unexpected output %q", out)
	}
}
