package signals

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trendforge/internal/model"
)

// SeasonalBoost is the multiplier given to topics of the current month.
const SeasonalBoost = 1.5

// Catalog holds curated topics per niche for each static source.
type Catalog struct {
	Platform   map[model.Niche][]model.TrendSignal `yaml:"platform"`
	Search     map[model.Niche][]model.TrendSignal `yaml:"search"`
	Competitor map[model.Niche][]model.TrendSignal `yaml:"competitor"`
	// Seasonal maps month number (1-12) to niche topics.
	Seasonal map[int]map[model.Niche][]string `yaml:"seasonal"`
}

// LoadCatalog reads a YAML catalog from path.
func LoadCatalog(path string) (Catalog, error) {
	var c Catalog
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// SaveCatalog writes c as YAML.
func SaveCatalog(path string, c Catalog) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Providers returns one provider per non-empty catalog section, in the
// platform, search, competitor, seasonal order.
func (c Catalog) Providers() []Provider {
	var out []Provider
	if len(c.Platform) > 0 {
		out = append(out, CatalogProvider{name: "catalog-platform", source: model.SourcePlatform, entries: c.Platform})
	}
	if len(c.Search) > 0 {
		out = append(out, CatalogProvider{name: "catalog-search", source: model.SourceSearch, entries: c.Search})
	}
	if len(c.Competitor) > 0 {
		out = append(out, CatalogProvider{name: "catalog-competitor", source: model.SourceCompetitor, entries: c.Competitor})
	}
	if len(c.Seasonal) > 0 {
		out = append(out, SeasonalProvider{Months: c.Seasonal})
	}
	return out
}

// CatalogProvider serves a fixed topic list for one source.
type CatalogProvider struct {
	name    string
	source  model.Source
	entries map[model.Niche][]model.TrendSignal
}

// NewCatalogProvider wraps entries as a provider of the given source.
func NewCatalogProvider(name string, source model.Source, entries map[model.Niche][]model.TrendSignal) CatalogProvider {
	return CatalogProvider{name: name, source: source, entries: entries}
}

func (p CatalogProvider) Name() string         { return p.name }
func (p CatalogProvider) Source() model.Source { return p.source }

func (p CatalogProvider) Signals(_ context.Context, niche model.Niche, _ time.Time) ([]model.TrendSignal, error) {
	src := p.entries[niche]
	out := make([]model.TrendSignal, len(src))
	copy(out, src)
	for i := range out {
		out[i].Source = p.source
	}
	return out, nil
}

// SeasonalProvider emits the current month's topics with a boost and high urgency.
type SeasonalProvider struct {
	Months map[int]map[model.Niche][]string
}

func (SeasonalProvider) Name() string         { return "seasonal" }
func (SeasonalProvider) Source() model.Source { return model.SourceSeasonal }

func (p SeasonalProvider) Signals(_ context.Context, niche model.Niche, now time.Time) ([]model.TrendSignal, error) {
	topics := p.Months[int(now.Month())][niche]
	out := make([]model.TrendSignal, 0, len(topics))
	for _, t := range topics {
		out = append(out, model.TrendSignal{
			Topic:         t,
			Source:        model.SourceSeasonal,
			SeasonalBoost: SeasonalBoost,
			Urgency:       model.UrgencyHigh,
		})
	}
	return out, nil
}

// DefaultCatalog is the starter catalog written by `trendforge init`.
func DefaultCatalog() Catalog {
	return Catalog{
		Platform: map[model.Niche][]model.TrendSignal{
			model.NicheTechnology: {
				{Topic: "Best AI Tools This Year", Views: 1_500_000, GrowthRate: 150},
				{Topic: "Flagship Phone Review", Views: 2_300_000, GrowthRate: 200},
				{Topic: "Desk Setup Upgrades", Views: 890_000, GrowthRate: 120},
			},
			model.NicheEducationKids: {
				{Topic: "Colors Sing-Along", Views: 5_600_000, GrowthRate: 180},
				{Topic: "ABC Song Adventures", Views: 3_200_000, GrowthRate: 140},
			},
			model.NicheLifestyle: {
				{Topic: "Morning Routine Reset", Views: 1_200_000, GrowthRate: 130},
				{Topic: "Budget Living Tips", Views: 750_000, GrowthRate: 145},
			},
			model.NicheGaming: {
				{Topic: "New Release Game Review", Views: 2_100_000, GrowthRate: 190},
				{Topic: "Speedrun Tricks Explained", Views: 1_600_000, GrowthRate: 170},
			},
			model.NicheHealth: {
				{Topic: "Beginner Strength Plan", Views: 1_400_000, GrowthRate: 165},
				{Topic: "High Protein Meal Prep", Views: 1_100_000, GrowthRate: 140},
			},
			model.NicheMotivation: {
				{Topic: "Discipline Over Motivation", Views: 1_800_000, GrowthRate: 175},
				{Topic: "Five AM Club Honest Take", Views: 1_300_000, GrowthRate: 150},
			},
		},
		Search: map[model.Niche][]model.TrendSignal{
			model.NicheTechnology:    {{Topic: "Quantum Computing Explained", SearchVolume: 450_000, GrowthRate: 300}},
			model.NicheEducationKids: {{Topic: "Kitchen Science Experiments", SearchVolume: 350_000, GrowthRate: 200}},
			model.NicheLifestyle:     {{Topic: "Minimalist Apartment Tour", SearchVolume: 420_000, GrowthRate: 170}},
			model.NicheGaming:        {{Topic: "Mobile Gaming Trends", SearchVolume: 480_000, GrowthRate: 220}},
			model.NicheHealth:        {{Topic: "Intermittent Fasting Guide", SearchVolume: 390_000, GrowthRate: 180}},
			model.NicheMotivation:    {{Topic: "Productivity Systems That Stick", SearchVolume: 340_000, GrowthRate: 200}},
		},
		Competitor: map[model.Niche][]model.TrendSignal{
			model.NicheTechnology:    {{Topic: "Tech Predictions for Next Year", AvgViews: 1_200_000, EngagementRate: 15.2}},
			model.NicheEducationKids: {{Topic: "Interactive Learning Games", AvgViews: 2_100_000, EngagementRate: 18.7}},
			model.NicheLifestyle:     {{Topic: "Room Makeover on a Budget", AvgViews: 1_400_000, EngagementRate: 16.8}},
			model.NicheGaming:        {{Topic: "Hidden Game Features", AvgViews: 1_100_000, EngagementRate: 17.2}},
			model.NicheHealth:        {{Topic: "Doctor Answers Health Myths", AvgViews: 1_300_000, EngagementRate: 16.5}},
			model.NicheMotivation:    {{Topic: "Comeback Stories", AvgViews: 1_800_000, EngagementRate: 20.3}},
		},
		Seasonal: map[int]map[model.Niche][]string{
			1: {
				model.NicheTechnology: {"New Year Tech Setup"},
				model.NicheHealth:     {"New Year Fitness Goals"},
				model.NicheMotivation: {"Goal Setting That Works"},
			},
			10: {
				model.NicheTechnology:    {"Halloween Tech Gadgets"},
				model.NicheEducationKids: {"Halloween Learning Fun"},
				model.NicheGaming:        {"Horror Games Worth Playing"},
				model.NicheLifestyle:     {"Fall Decorating Hacks"},
			},
			12: {
				model.NicheTechnology: {"Holiday Gift Guide for Techies"},
				model.NicheLifestyle:  {"Cozy Winter Home Ideas"},
			},
		},
	}
}
