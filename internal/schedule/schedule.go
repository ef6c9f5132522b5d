package schedule

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"trendforge/internal/model"
	"trendforge/internal/revenue"
)

var (
	// ErrNoOpportunities is returned when a calendar is requested without anything to schedule.
	ErrNoOpportunities = errors.New("schedule: no opportunities to place on the calendar")
	// ErrInvalidDays is returned for calendars shorter than one day.
	ErrInvalidDays = errors.New("schedule: calendar needs at least one day")
)

// IntN is the randomness the builder needs. *rand.Rand from math/rand/v2 satisfies it.
type IntN interface {
	IntN(n int) int
}

// Preference lists the posting times (HH:MM) for weekdays and weekends.
type Preference struct {
	Weekday []string `yaml:"weekday" json:"weekday"`
	Weekend []string `yaml:"weekend" json:"weekend"`
}

// PostingTimes returns the built-in preference for an age group.
func PostingTimes(g model.AgeGroup) Preference {
	switch g.Normalize() {
	case model.AgeKids:
		return Preference{Weekday: []string{"16:00", "17:00", "18:00"}, Weekend: []string{"09:00", "10:00", "14:00"}}
	case model.AgeTeens:
		return Preference{Weekday: []string{"15:00", "19:00", "21:00"}, Weekend: []string{"10:00", "14:00", "20:00"}}
	case model.AgeAdults:
		return Preference{Weekday: []string{"12:00", "17:00", "20:00"}, Weekend: []string{"08:00", "13:00", "18:00"}}
	case model.AgeMatureAdults:
		return Preference{Weekday: []string{"11:00", "16:00", "19:00"}, Weekend: []string{"08:00", "12:00", "17:00"}}
	case model.AgeAllAdults:
		return Preference{Weekday: []string{"12:00", "18:00", "20:00"}, Weekend: []string{"09:00", "14:00", "19:00"}}
	default:
		return Preference{Weekday: []string{"12:00", "18:00", "21:00"}, Weekend: []string{"09:00", "15:00", "19:00"}}
	}
}

// Overrides replaces the built-in preference per age group. Empty lists keep the built-in times.
type Overrides map[model.AgeGroup]Preference

// Lookup resolves the preference for g.
func (o Overrides) Lookup(g model.AgeGroup) Preference {
	base := PostingTimes(g)
	p, ok := o[g]
	if !ok {
		return base
	}
	if len(p.Weekday) == 0 {
		p.Weekday = base.Weekday
	}
	if len(p.Weekend) == 0 {
		p.Weekend = base.Weekend
	}
	return p
}

// Builder lays ranked opportunities out over consecutive days.
type Builder struct {
	// Rand picks the time of day. Nil uses the global math/rand/v2 source.
	Rand IntN
	// Now anchors day zero. Nil uses time.Now.
	Now func() time.Time
	// Times overrides posting times per age group.
	Times Overrides
}

// Build returns exactly days entries starting today. Topics cycle through opps
// with wraparound so every requested day gets an entry.
func (b Builder) Build(ch model.Channel, opps []model.Opportunity, days int) ([]model.CalendarEntry, error) {
	if len(opps) == 0 {
		return nil, fmt.Errorf("%w: channel %s", ErrNoOpportunities, ch.ID)
	}
	if days < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}
	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}
	times := b.Times.Lookup(ch.AgeGroup)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]model.CalendarEntry, 0, days)
	for day := 0; day < days; day++ {
		target := today.AddDate(0, 0, day)
		slots := times.Weekday
		if IsWeekend(target) {
			slots = times.Weekend
		}
		opp := opps[day%len(opps)]
		out = append(out, model.CalendarEntry{
			ChannelID:             ch.ID,
			Date:                  target.Format(model.DateLayout),
			Time:                  slots[b.intN(len(slots))],
			Topic:                 opp.Topic,
			ViralScore:            opp.ViralScore,
			MonetizationPotential: opp.MonetizationPotential,
			CompetitionLevel:      opp.CompetitionLevel,
			EstimatedViews:        revenue.EstimateViews(opp, ch),
			EstimatedRevenue:      revenue.EstimateRevenue(opp, ch),
		})
	}
	return out, nil
}

func (b Builder) intN(n int) int {
	if b.Rand == nil {
		return rand.IntN(n)
	}
	return b.Rand.IntN(n)
}

// BuildCalendar is Builder{Rand: rng, Now: now}.Build.
func BuildCalendar(ch model.Channel, opps []model.Opportunity, days int, now time.Time, rng IntN) ([]model.CalendarEntry, error) {
	return Builder{Rand: rng, Now: func() time.Time { return now }}.Build(ch, opps, days)
}

// IsWeekend reports Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
