package model

import (
	"math"

	"trendforge/internal/util"
)

var (
	reviewKeywords      = []string{"review", "best", "tool", "product"}
	tutorialKeywords    = []string{"how to", "guide", "tutorial"}
	highValueKeywords   = []string{"expensive", "premium", "professional", "business", "investment"}
	competitionKeywords = []string{"viral", "trending", "popular", "best", "top"}
)

// MaxCompetition caps CompetitionLevel.
const MaxCompetition = 5.0

// ViralScore estimates how shareable a topic is for the channel.
// Reach terms are capped independently, the seasonal boost multiplies
// everything before the urgency bonus.
func ViralScore(s TrendSignal, ch Channel) float64 {
	score := 0.0
	score += capAt(float64(s.Views)/1_000_000, 10)
	score += capAt(s.GrowthRate/10, 10)
	score += capAt(float64(s.SearchVolume)/100_000, 10)
	if util.ContainsAnyCaseInsensitive(s.Topic, ch.Keywords) {
		score += 5
	}
	score += capAt(s.EngagementRate, 5)
	if s.SeasonalBoost > 0 {
		score *= s.SeasonalBoost
	}
	if s.Urgency == UrgencyHigh {
		score += 3
	}
	return round2(score)
}

// MonetizationPotential scores how well the topic fits the channel's revenue strategies.
func MonetizationPotential(s TrendSignal, ch Channel) float64 {
	score := 0.0
	if ch.HasStrategy(StrategyAffiliate) && util.ContainsAnyCaseInsensitive(s.Topic, reviewKeywords) {
		score += 2
	}
	if ch.HasStrategy(StrategyAds) {
		score += 1.5
	}
	if ch.HasStrategy(StrategyCourses) && util.ContainsAnyCaseInsensitive(s.Topic, tutorialKeywords) {
		score += 2.5
	}
	if util.ContainsAnyCaseInsensitive(s.Topic, highValueKeywords) {
		score += 1.5
	}
	return round2(ch.Niche.MonetizationBase() + score)
}

// CompetitionLevel estimates saturation for a topic in [0, MaxCompetition].
func CompetitionLevel(s TrendSignal) float64 {
	level := 3.0
	if util.ContainsAnyCaseInsensitive(s.Topic, competitionKeywords) {
		level += 1.5
	}
	if s.Urgency == UrgencyHigh {
		level += 1.0
	}
	return math.Min(level, MaxCompetition)
}

// Score derives all three scalars for s.
func Score(s TrendSignal, ch Channel) Opportunity {
	return Opportunity{
		TrendSignal:           s,
		ViralScore:            ViralScore(s, ch),
		MonetizationPotential: MonetizationPotential(s, ch),
		CompetitionLevel:      CompetitionLevel(s),
	}
}

func capAt(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
