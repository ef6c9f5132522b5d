package rank

import (
	"fmt"
	"sort"

	"trendforge/internal/model"
)

// DefaultTop is how many opportunities a channel plan keeps.
const DefaultTop = 10

// RankOpportunities scores every signal against the channel and orders them by
// viral + monetization - competition, highest first. Equal scores keep their
// discovery order.
func RankOpportunities(ch model.Channel, signals []model.TrendSignal) ([]model.Opportunity, error) {
	opps := make([]model.Opportunity, 0, len(signals))
	for i, s := range signals {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("rank %s: signal %d: %w", ch.ID, i, err)
		}
		opps = append(opps, model.Score(s, ch))
	}
	sort.SliceStable(opps, func(i, j int) bool { return opps[i].Combined() > opps[j].Combined() })
	return opps, nil
}

// Top returns at most n opportunities. n <= 0 returns them all.
func Top(opps []model.Opportunity, n int) []model.Opportunity {
	if n <= 0 || len(opps) <= n {
		return opps
	}
	return opps[:n]
}
