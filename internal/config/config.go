package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"trendforge/internal/logging"
	"trendforge/internal/model"
	"trendforge/internal/schedule"
)

// Config is the application's configuration model.
// It captures channels, trend sources, calendar shape and the outer adapters.
type Config struct {
	Channels []model.Channel `yaml:"channels"`
	Signals  SignalsConfig   `yaml:"signals"`
	Schedule ScheduleConfig  `yaml:"schedule"`
	Planner  PlannerConfig   `yaml:"planner"`
	Storage  StorageConfig   `yaml:"storage"`
	Cache    CacheConfig     `yaml:"cache"`
	Events   EventsConfig    `yaml:"events"`
	Server   ServerConfig    `yaml:"server"`
	Metrics  MetricsConfig   `yaml:"metrics"`
	Logging  LoggingConfig   `yaml:"logging"`
	YouTube  YouTubeConfig   `yaml:"youtube"`
	Upload   UploadConfig    `yaml:"upload"`
	// Directory for exported weekly calendar files. Empty disables export.
	OutputDir string `yaml:"outputDir"`
}

type SignalsConfig struct {
	// YAML catalog with platform/search/competitor/seasonal topics per niche
	CatalogPath string `yaml:"catalogPath"`
	// RSS/Atom feeds per niche; "*" applies to every niche
	Feeds map[string][]string `yaml:"feeds"`
	// Requests per second against feed hosts. 0 uses the fetcher default.
	FeedRPS float64 `yaml:"feedRps"`
	// Use the hosting platform's most-popular chart (needs youtube.apiKey)
	Trending     bool   `yaml:"trending"`
	RegionCode   string `yaml:"regionCode"`
	TrendingSize int64  `yaml:"trendingSize"`
}

type ScheduleConfig struct {
	Days int `yaml:"days"`
	// IANA zone the calendar dates and times are read in, e.g. "America/New_York"
	Timezone string `yaml:"timezone"`
	// Optional posting-time overrides keyed by age group
	PostingTimes schedule.Overrides `yaml:"postingTimes"`
}

type PlannerConfig struct {
	TopN     int  `yaml:"topN"`
	Parallel bool `yaml:"parallel"`
	// Non-zero seed makes calendar times reproducible per channel
	Seed     uint64 `yaml:"seed"`
	Interval string `yaml:"interval"` // e.g. "24h"
}

type StorageConfig struct {
	Driver      string `yaml:"driver"` // "sqlite" or "postgres"
	DBPath      string `yaml:"dbPath"`
	DatabaseURL string `yaml:"databaseUrl"`
}

type CacheConfig struct {
	RedisURL string `yaml:"redisUrl"`
	TTL      string `yaml:"ttl"`
}

type EventsConfig struct {
	NATSURL       string `yaml:"natsUrl"`
	SubjectPrefix string `yaml:"subjectPrefix"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type YouTubeConfig struct {
	// If empty, read from env YOUTUBE_API_KEY
	APIKey string `yaml:"apiKey"`
	// OAuth client for uploads. If empty, read YOUTUBE_CLIENT_ID / YOUTUBE_CLIENT_SECRET / YOUTUBE_REFRESH_TOKEN
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	RefreshToken string `yaml:"refreshToken"`
}

// UploadConfig tunes scheduled uploads. Scheduled videos are always private
// until their publish time.
type UploadConfig struct {
	MaxPerDay  int    `yaml:"maxPerDay"`
	CategoryID string `yaml:"categoryId"`
	Notify     bool   `yaml:"notifySubscribers"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Channels: []model.Channel{
			{ID: "tech_reviews", Name: "Gadget Lab", Niche: model.NicheTechnology, AgeGroup: model.AgeYoungAdults,
				Strategies: []model.Strategy{model.StrategyAds, model.StrategyAffiliate}, Keywords: []string{"AI", "tech", "gadget"}},
			{ID: "health_daily", Name: "Daily Wellness", Niche: model.NicheHealth, AgeGroup: model.AgeAdults,
				Strategies: []model.Strategy{model.StrategyAds, model.StrategyCourses}, Keywords: []string{"health", "fitness", "sleep"}},
			{ID: "kids_learning", Name: "Little Explorers", Niche: model.NicheEducationKids, AgeGroup: model.AgeKids,
				Strategies: []model.Strategy{model.StrategyAds, model.StrategyMerchandise}, Keywords: []string{"learn", "kids", "science"}},
		},
		Signals:   SignalsConfig{CatalogPath: "./signals.yaml", RegionCode: "US", TrendingSize: 25},
		Schedule:  ScheduleConfig{Days: 7, Timezone: "UTC"},
		Planner:   PlannerConfig{TopN: 10, Interval: "24h"},
		Storage:   StorageConfig{Driver: "sqlite", DBPath: "./trendforge.db"},
		Cache:     CacheConfig{TTL: "10m"},
		Events:    EventsConfig{SubjectPrefix: "trendforge"},
		Server:    ServerConfig{Addr: ":8080", CORSOrigins: []string{"*"}},
		Logging:   LoggingConfig{Level: "info"},
		Upload:    UploadConfig{MaxPerDay: 3, CategoryID: "22"},
		OutputDir: "./data",
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	fill(&c.YouTube.ClientID, "YOUTUBE_CLIENT_ID")
	fill(&c.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET")
	fill(&c.YouTube.RefreshToken, "YOUTUBE_REFRESH_TOKEN")
	fill(&c.Storage.DatabaseURL, "DATABASE_URL")
	fill(&c.Cache.RedisURL, "REDIS_URL")
	fill(&c.Events.NATSURL, "NATS_URL")
	fill(&c.Metrics.Addr, "METRICS_ADDR")
}

// Validate checks that channel ids are present and unique, and that durations and zones parse.
func (c Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Channels))
	for i, ch := range c.Channels {
		id := strings.TrimSpace(ch.ID)
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("channels[%d]: empty id", i))
		case seen[id]:
			errs = append(errs, fmt.Errorf("channels[%d]: duplicate id %q", i, id))
		}
		seen[id] = true
	}
	if c.Schedule.Days < 0 {
		errs = append(errs, fmt.Errorf("schedule.days: %d is negative", c.Schedule.Days))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.PlanInterval(); err != nil {
		errs = append(errs, err)
	}
	switch c.Storage.Driver {
	case "", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}

// Channel looks up a configured channel by id.
func (c Config) Channel(id string) (model.Channel, bool) {
	for _, ch := range c.Channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return model.Channel{}, false
}

// Location resolves schedule.timezone. Empty means UTC.
func (c Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	return loc, nil
}

// PlanInterval parses planner.interval, defaulting to 24h.
func (c Config) PlanInterval() (time.Duration, error) {
	if c.Planner.Interval == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(c.Planner.Interval)
	if err != nil {
		return 0, fmt.Errorf("planner.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("planner.interval: %s must be positive", d)
	}
	return d, nil
}

// CacheTTL parses cache.ttl, defaulting to 10m.
func (c Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.NormalizeNiches()
	cfg.ResolveEnv()
	return cfg, nil
}

// NormalizeNiches lowercases and trims channel niches so " Technology " gets
// the technology rates. Unknown niches are kept and fall back to default rates.
func (c *Config) NormalizeNiches() {
	for i := range c.Channels {
		n := model.ParseNiche(string(c.Channels[i].Niche))
		c.Channels[i].Niche = n
		if !n.Known() {
			known := make([]string, len(model.Niches))
			for j, k := range model.Niches {
				known[j] = string(k)
			}
			logging.Warn("unknown_niche", map[string]any{
				"channel": c.Channels[i].ID,
				"niche":   string(n),
				"known":   strings.Join(known, ","),
			})
		}
	}
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
