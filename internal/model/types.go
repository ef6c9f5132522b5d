package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrMissingTopic marks a signal that arrived without its required topic.
	ErrMissingTopic = errors.New("signal has no topic")
	// ErrNegativeMetric marks a signal carrying a negative count, rate or multiplier.
	ErrNegativeMetric = errors.New("signal has a negative metric")
	// ErrNonFiniteMetric marks a signal carrying a NaN or infinite rate or multiplier.
	ErrNonFiniteMetric = errors.New("signal has a non-finite metric")
)

// Channel is one configured content channel. Loaded once from config, never mutated.
type Channel struct {
	ID         string     `yaml:"id" json:"id"`
	Name       string     `yaml:"name" json:"name"`
	Niche      Niche      `yaml:"niche" json:"niche"`
	AgeGroup   AgeGroup   `yaml:"targetAgeGroup" json:"target_age_group"`
	Strategies []Strategy `yaml:"monetization" json:"monetization_strategy"`
	Keywords   []string   `yaml:"keywords" json:"keywords"`
}

// HasStrategy reports whether s is part of the channel's monetization set.
func (c Channel) HasStrategy(s Strategy) bool {
	for _, v := range c.Strategies {
		if Strategy(strings.ToLower(string(v))) == s {
			return true
		}
	}
	return false
}

// TrendSignal is a topic reported by one trend source. Sources fill different
// optional fields; a zero value means the source did not report it.
type TrendSignal struct {
	Topic          string  `yaml:"topic" json:"topic"`
	Source         Source  `yaml:"source,omitempty" json:"source,omitempty"`
	Views          int64   `yaml:"views,omitempty" json:"views,omitempty"`
	AvgViews       int64   `yaml:"avgViews,omitempty" json:"avg_views,omitempty"`
	GrowthRate     float64 `yaml:"growthRate,omitempty" json:"growth_rate,omitempty"`
	SearchVolume   int64   `yaml:"searchVolume,omitempty" json:"search_volume,omitempty"`
	EngagementRate float64 `yaml:"engagementRate,omitempty" json:"engagement_rate,omitempty"`
	// SeasonalBoost multiplies the viral score when > 0.
	SeasonalBoost float64 `yaml:"seasonalBoost,omitempty" json:"seasonal_boost,omitempty"`
	Urgency       Urgency `yaml:"urgency,omitempty" json:"urgency,omitempty"`
}

// Validate checks the required fields of a signal.
func (s TrendSignal) Validate() error {
	if strings.TrimSpace(s.Topic) == "" {
		return ErrMissingTopic
	}
	for _, f := range []float64{s.GrowthRate, s.EngagementRate, s.SeasonalBoost} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %q", ErrNonFiniteMetric, s.Topic)
		}
	}
	if s.Views < 0 || s.AvgViews < 0 || s.GrowthRate < 0 || s.SearchVolume < 0 || s.EngagementRate < 0 || s.SeasonalBoost < 0 {
		return fmt.Errorf("%w: %q", ErrNegativeMetric, s.Topic)
	}
	return nil
}

// Opportunity is a signal scored against one channel.
type Opportunity struct {
	TrendSignal
	ViralScore            float64 `json:"viral_score"`
	MonetizationPotential float64 `json:"monetization_potential"`
	CompetitionLevel      float64 `json:"competition_level"`
}

// Combined is the ranking key: viral + monetization - competition.
func (o Opportunity) Combined() float64 {
	return round2(o.ViralScore + o.MonetizationPotential - o.CompetitionLevel)
}

// CalendarEntry is one planned upload slot.
type CalendarEntry struct {
	ChannelID             string  `json:"channel_id"`
	Date                  string  `json:"date"` // YYYY-MM-DD
	Time                  string  `json:"time"` // HH:MM
	Topic                 string  `json:"topic"`
	ViralScore            float64 `json:"viral_score"`
	MonetizationPotential float64 `json:"monetization_potential"`
	CompetitionLevel      float64 `json:"competition_level"`
	EstimatedViews        int64   `json:"estimated_views"`
	EstimatedRevenue      float64 `json:"estimated_revenue"`
}

// DateLayout and TimeLayout are the calendar's wire formats.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// At resolves the entry's date and time of day in loc.
func (e CalendarEntry) At(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar entry %s %s: %w", e.Date, e.Time, err)
	}
	return t, nil
}
