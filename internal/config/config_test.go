package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trendforge/internal/model"
	"trendforge/internal/schedule"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trendforge.yaml")
	cfg := Default()
	cfg.Schedule.PostingTimes = schedule.Overrides{model.AgeTeens: {Weekday: []string{"07:30"}}}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Channels) != 3 || got.Channels[0].Niche != model.NicheTechnology {
		t.Fatalf("unexpected channels: %+v", got.Channels)
	}
	if got.Channels[0].AgeGroup != model.AgeYoungAdults || !got.Channels[0].HasStrategy(model.StrategyAffiliate) {
		t.Fatalf("channel fields lost: %+v", got.Channels[0])
	}
	if got.Schedule.Days != 7 || got.Planner.TopN != 10 {
		t.Fatalf("unexpected defaults: %+v %+v", got.Schedule, got.Planner)
	}
	if p := got.Schedule.PostingTimes.Lookup(model.AgeTeens); p.Weekday[0] != "07:30" {
		t.Fatalf("posting-time override lost: %+v", p)
	}
}

func TestLoadReadsChannelYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trendforge.yaml")
	doc := `
channels:
  - id: fit
    name: Fit Daily
    niche: health
    targetAgeGroup: "25-50"
    monetization: [ads, courses]
    keywords: [workout]
schedule:
  days: 14
  timezone: UTC
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ch, ok := cfg.Channel("fit")
	if !ok {
		t.Fatalf("channel fit not found")
	}
	if ch.Niche != model.NicheHealth || ch.AgeGroup != model.AgeAdults || !ch.HasStrategy(model.StrategyCourses) {
		t.Fatalf("unexpected channel: %+v", ch)
	}
	if cfg.Schedule.Days != 14 {
		t.Fatalf("days = %d", cfg.Schedule.Days)
	}
	if _, ok := cfg.Channel("missing"); ok {
		t.Fatalf("unexpected channel")
	}
}

func TestLoadNormalizesNiches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trendforge.yaml")
	doc := `
channels:
  - id: tech
    niche: " Technology "
  - id: odd
    niche: Cooking
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tech, _ := cfg.Channel("tech")
	if tech.Niche != model.NicheTechnology || tech.Niche.RPM() != 4.50 {
		t.Fatalf("niche = %q rpm = %.2f", tech.Niche, tech.Niche.RPM())
	}
	odd, _ := cfg.Channel("odd")
	if odd.Niche != "cooking" || odd.Niche.Known() {
		t.Fatalf("unknown niche should be kept lowercased, got %q", odd.Niche)
	}
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "key-from-env")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg := Default()
	cfg.YouTube.ClientID = "from-file"
	t.Setenv("YOUTUBE_CLIENT_ID", "ignored")
	cfg.ResolveEnv()
	if cfg.YouTube.APIKey != "key-from-env" || cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("env not applied: %+v %+v", cfg.YouTube, cfg.Cache)
	}
	if cfg.YouTube.ClientID != "from-file" {
		t.Fatalf("file value should win, got %q", cfg.YouTube.ClientID)
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	cfg := Default()
	cfg.Channels = append(cfg.Channels, model.Channel{ID: "tech_reviews"}, model.Channel{ID: " "})
	cfg.Planner.Interval = "soon"
	cfg.Storage.Driver = "mongo"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"duplicate id", "empty id", "planner.interval", "storage.driver"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()
	if d, err := cfg.PlanInterval(); err != nil || d != 24*time.Hour {
		t.Fatalf("interval = %s, %v", d, err)
	}
	cfg.Cache.TTL = "bogus"
	if cfg.CacheTTL() != 10*time.Minute {
		t.Fatalf("ttl fallback = %s", cfg.CacheTTL())
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("location = %v, %v", loc, err)
	}
}
