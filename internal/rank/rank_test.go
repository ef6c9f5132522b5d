package rank

import (
	"errors"
	"testing"

	"trendforge/internal/model"
)

var tech = model.Channel{
	ID:         "tech",
	Niche:      model.NicheTechnology,
	Strategies: []model.Strategy{model.StrategyAds, model.StrategyAffiliate},
	Keywords:   []string{"AI", "tech"},
}

func TestRankOrdersByCombinedScore(t *testing.T) {
	signals := []model.TrendSignal{
		{Topic: "Gaming Setup 2025", Views: 890_000, GrowthRate: 120},
		{Topic: "AI Tools 2025", Views: 1_500_000, GrowthRate: 150},
		{Topic: "Quantum Computing Breakthrough", SearchVolume: 450_000, GrowthRate: 300},
	}
	opps, err := RankOpportunities(tech, signals)
	if err != nil {
		t.Fatal(err)
	}
	if len(opps) != 3 {
		t.Fatalf("expected 3 opportunities, got %d", len(opps))
	}
	for i := 1; i < len(opps); i++ {
		if opps[i-1].Combined() < opps[i].Combined() {
			t.Fatalf("not sorted at %d: %.2f < %.2f", i, opps[i-1].Combined(), opps[i].Combined())
		}
	}
	if opps[0].Topic != "AI Tools 2025" {
		t.Fatalf("expected AI Tools 2025 first, got %s", opps[0].Topic)
	}
}

func TestRankStableOnTies(t *testing.T) {
	signals := []model.TrendSignal{
		{Topic: "first", Views: 1_000_000},
		{Topic: "second", Views: 1_000_000},
		{Topic: "third", Views: 1_000_000},
	}
	for run := 0; run < 5; run++ {
		opps, err := RankOpportunities(tech, signals)
		if err != nil {
			t.Fatal(err)
		}
		if opps[0].Topic != "first" || opps[1].Topic != "second" || opps[2].Topic != "third" {
			t.Fatalf("tie order not preserved: %s %s %s", opps[0].Topic, opps[1].Topic, opps[2].Topic)
		}
	}
}

func TestRankBounds(t *testing.T) {
	signals := []model.TrendSignal{
		{Topic: "Top Viral Trending Best", Urgency: model.UrgencyHigh, SeasonalBoost: 1.5},
		{Topic: "quiet topic"},
		{Topic: "Premium Business Review", Views: 90_000_000, GrowthRate: 9999, SearchVolume: 1 << 40, EngagementRate: 99},
	}
	opps, err := RankOpportunities(tech, signals)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range opps {
		if o.ViralScore < 0 || o.MonetizationPotential < 0 || o.CompetitionLevel < 0 || o.CompetitionLevel > model.MaxCompetition {
			t.Fatalf("out of bounds: %+v", o)
		}
	}
}

func TestRankRejectsMissingTopic(t *testing.T) {
	_, err := RankOpportunities(tech, []model.TrendSignal{{Topic: "ok"}, {Views: 10}})
	if !errors.Is(err, model.ErrMissingTopic) {
		t.Fatalf("expected ErrMissingTopic, got %v", err)
	}
}

func TestTop(t *testing.T) {
	opps := make([]model.Opportunity, 12)
	if got := len(Top(opps, DefaultTop)); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := len(Top(opps[:3], DefaultTop)); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := len(Top(opps, 0)); got != 12 {
		t.Fatalf("expected all, got %d", got)
	}
}
