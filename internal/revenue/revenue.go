// Package revenue projects reach and earnings for a scheduled opportunity.
// Estimates are linear in views and carry no currency.
package revenue

import (
	"math"

	"trendforge/internal/model"
)

// BaseViews is the reach assumed for a viral score of 1 on a new channel.
const BaseViews = 10000

// EstimateViews is BaseViews * viral score * niche multiplier, truncated.
func EstimateViews(o model.Opportunity, ch model.Channel) int64 {
	return int64(BaseViews * o.ViralScore * ch.Niche.ViewMultiplier())
}

// EstimateRevenue converts estimated views to earnings through the niche RPM,
// weighted by monetization potential over 5.
func EstimateRevenue(o model.Opportunity, ch model.Channel) float64 {
	views := EstimateViews(o, ch)
	ad := float64(views) / 1000 * ch.Niche.RPM()
	total := ad * (o.MonetizationPotential / 5.0)
	return math.Round(total*100) / 100
}
