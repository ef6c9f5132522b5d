package analytics

import (
	"math"
	"sort"

	"trendforge/internal/model"
)

// Projection totals the estimates of a calendar.
type Projection struct {
	Entries       int                `json:"entries"`
	TotalViews    int64              `json:"total_views"`
	TotalRevenue  float64            `json:"total_revenue"`
	RevenueByDate map[string]float64 `json:"revenue_by_date"`
	TopicsByDate  map[string]int     `json:"topics_by_date"`
	AverageViral  float64            `json:"average_viral_score"`
}

// Summarize aggregates entries into per-date buckets.
func Summarize(entries []model.CalendarEntry) Projection {
	p := Projection{
		RevenueByDate: make(map[string]float64),
		TopicsByDate:  make(map[string]int),
	}
	viral := 0.0
	for _, e := range entries {
		p.Entries++
		p.TotalViews += e.EstimatedViews
		p.TotalRevenue += e.EstimatedRevenue
		p.RevenueByDate[e.Date] = round2(p.RevenueByDate[e.Date] + e.EstimatedRevenue)
		p.TopicsByDate[e.Date]++
		viral += e.ViralScore
	}
	p.TotalRevenue = round2(p.TotalRevenue)
	if p.Entries > 0 {
		p.AverageViral = round2(viral / float64(p.Entries))
	}
	return p
}

// SortedDates returns the bucket keys in calendar order.
func SortedDates(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys) // YYYY-MM-DD sorts lexically
	return keys
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
