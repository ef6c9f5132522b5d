package analytics

import (
	"math"
	"time"

	"trendforge/internal/model"
)

// Partner program thresholds a channel works towards.
const (
	RequiredSubscribers = 1000
	RequiredWatchHours  = 4000
	RequiredVideos      = 50
)

// baseTimelineDays is the time to monetization of an average niche.
const baseTimelineDays = 180

// Metric names used as bottlenecks.
const (
	MetricSubscribers = "subscribers"
	MetricWatchHours  = "watch_hours"
	MetricVideos      = "videos"
)

// WeeklyTargets is the pace needed to reach the thresholds on time.
type WeeklyTargets struct {
	Subscribers int `json:"subscribers"`
	WatchHours  int `json:"watch_hours"`
	Videos      int `json:"videos"`
}

// Timeline estimates when a new channel reaches monetization.
type Timeline struct {
	EstimatedDays int           `json:"estimated_days"`
	TargetDate    string        `json:"estimated_monetization_date"`
	Weekly        WeeklyTargets `json:"weekly_targets"`
}

// timelineMultiplier stretches or shortens the base timeline by niche.
func timelineMultiplier(n model.Niche) float64 {
	switch n {
	case model.NicheEducationKids:
		return 0.8 // family sharing
	case model.NicheHealth:
		return 0.9
	case model.NicheTechnology:
		return 1.0
	case model.NicheLifestyle:
		return 1.1
	case model.NicheGaming:
		return 1.2
	case model.NicheMotivation:
		return 1.3
	default:
		return 1.0
	}
}

// MonetizationTimeline estimates the days to monetization for ch starting
// at now, with the weekly pace that gets there.
func MonetizationTimeline(ch model.Channel, now time.Time) Timeline {
	days := int(math.Round(baseTimelineDays * timelineMultiplier(ch.Niche)))
	weeks := float64(days) / 7
	return Timeline{
		EstimatedDays: days,
		TargetDate:    now.AddDate(0, 0, days).Format(model.DateLayout),
		Weekly: WeeklyTargets{
			Subscribers: int(RequiredSubscribers / weeks),
			WatchHours:  int(RequiredWatchHours / weeks),
			Videos:      int(RequiredVideos / weeks),
		},
	}
}

// Progress is where a channel stands against the thresholds.
type Progress struct {
	Subscribers int     `json:"subscribers"`
	WatchHours  float64 `json:"watch_hours"`
	Videos      int     `json:"videos"`
}

// Growth is the weekly gain per metric.
type Growth struct {
	Subscribers float64 `json:"subscribers"`
	WatchHours  float64 `json:"watch_hours"`
	Videos      float64 `json:"videos"`
}

// DefaultGrowth is the pace assumed for a metric without an observed rate.
var DefaultGrowth = Growth{Subscribers: 15, WatchHours: 25, Videos: 7}

// Remaining is the time left to monetization at the current pace.
type Remaining struct {
	WeeksRemaining int `json:"weeks_remaining"`
	// Bottleneck is the metric that takes longest to reach its threshold.
	Bottleneck string             `json:"bottleneck"`
	Weeks      map[string]float64 `json:"weeks"`
}

// TimeToMonetization projects the weeks each threshold needs at rate and
// reports the slowest one. Non-positive rates use DefaultGrowth. Ties go to
// subscribers, then watch hours.
func TimeToMonetization(cur Progress, rate Growth) Remaining {
	pick := func(v, def float64) float64 {
		if v > 0 {
			return v
		}
		return def
	}
	metrics := []struct {
		name  string
		left  float64
		speed float64
	}{
		{MetricSubscribers, float64(RequiredSubscribers - cur.Subscribers), pick(rate.Subscribers, DefaultGrowth.Subscribers)},
		{MetricWatchHours, RequiredWatchHours - cur.WatchHours, pick(rate.WatchHours, DefaultGrowth.WatchHours)},
		{MetricVideos, float64(RequiredVideos - cur.Videos), pick(rate.Videos, DefaultGrowth.Videos)},
	}

	r := Remaining{Bottleneck: MetricSubscribers, Weeks: make(map[string]float64, len(metrics))}
	longest := -1.0
	for _, m := range metrics {
		w := math.Max(0, m.left/m.speed)
		r.Weeks[m.name] = round2(w)
		if w > longest {
			longest = w
			r.Bottleneck = m.name
		}
	}
	r.WeeksRemaining = int(longest)
	return r
}
