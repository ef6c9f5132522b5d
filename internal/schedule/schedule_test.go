package schedule

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"trendforge/internal/model"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

// 2025-01-06 is a Monday.
var monday = time.Date(2025, time.January, 6, 15, 30, 0, 0, time.UTC)

func opps(topics ...string) []model.Opportunity {
	out := make([]model.Opportunity, 0, len(topics))
	for i, t := range topics {
		out = append(out, model.Opportunity{
			TrendSignal:           model.TrendSignal{Topic: t},
			ViralScore:            float64(10 - i),
			MonetizationPotential: 5,
			CompetitionLevel:      3,
		})
	}
	return out
}

func TestBuildCalendarCompleteAndContiguous(t *testing.T) {
	ch := model.Channel{ID: "tech", Niche: model.NicheTechnology, AgeGroup: model.AgeYoungAdults}
	entries, err := BuildCalendar(ch, opps("A", "B", "C"), 7, monday, fixedRand(0))
	if err != nil {
		t.Fatalf("BuildCalendar: %v", err)
	}
	if len(entries) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(entries))
	}
	for i, e := range entries {
		want := monday.AddDate(0, 0, i).Format(model.DateLayout)
		if e.Date != want {
			t.Fatalf("entry %d date = %s, want %s", i, e.Date, want)
		}
		if e.ChannelID != "tech" {
			t.Fatalf("entry %d channel = %q", i, e.ChannelID)
		}
	}
	if entries[0].Date != "2025-01-06" {
		t.Fatalf("calendar must start today, got %s", entries[0].Date)
	}
}

func TestBuildCalendarWrapsTopics(t *testing.T) {
	ch := model.Channel{ID: "c"}
	entries, err := BuildCalendar(ch, opps("A", "B"), 5, monday, fixedRand(0))
	if err != nil {
		t.Fatalf("BuildCalendar: %v", err)
	}
	want := []string{"A", "B", "A", "B", "A"}
	for i, e := range entries {
		if e.Topic != want[i] {
			t.Fatalf("entry %d topic = %s, want %s", i, e.Topic, want[i])
		}
	}
}

func TestBuildCalendarRejectsEmptyAndShort(t *testing.T) {
	ch := model.Channel{ID: "c"}
	if _, err := BuildCalendar(ch, nil, 7, monday, nil); !errors.Is(err, ErrNoOpportunities) {
		t.Fatalf("expected ErrNoOpportunities, got %v", err)
	}
	if _, err := BuildCalendar(ch, opps("A"), 0, monday, nil); !errors.Is(err, ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays, got %v", err)
	}
}

func TestBuildCalendarPicksWeekendTimes(t *testing.T) {
	ch := model.Channel{ID: "kids", AgeGroup: model.AgeKids}
	entries, err := BuildCalendar(ch, opps("A"), 7, monday, fixedRand(1))
	if err != nil {
		t.Fatalf("BuildCalendar: %v", err)
	}
	pref := PostingTimes(model.AgeKids)
	for i, e := range entries {
		slots := pref.Weekday
		if i == 5 || i == 6 {
			slots = pref.Weekend
		}
		if e.Time != slots[1] {
			t.Fatalf("entry %d (%s) time = %s, want %s", i, e.Date, e.Time, slots[1])
		}
	}
}

func TestBuildCalendarTimesComeFromTable(t *testing.T) {
	ch := model.Channel{ID: "c", AgeGroup: model.AgeTeens}
	entries, err := BuildCalendar(ch, opps("A", "B"), 14, monday, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("BuildCalendar: %v", err)
	}
	pref := PostingTimes(model.AgeTeens)
	for _, e := range entries {
		d, err := time.Parse(model.DateLayout, e.Date)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		slots := pref.Weekday
		if IsWeekend(d) {
			slots = pref.Weekend
		}
		found := false
		for _, s := range slots {
			if s == e.Time {
				found = true
			}
		}
		if !found {
			t.Fatalf("time %s on %s not in %v", e.Time, e.Date, slots)
		}
	}
}

func TestBuildCalendarSeedIsDeterministic(t *testing.T) {
	ch := model.Channel{ID: "c", Niche: model.NicheGaming}
	a, _ := BuildCalendar(ch, opps("A", "B", "C"), 10, monday, rand.New(rand.NewPCG(7, 7)))
	b, _ := BuildCalendar(ch, opps("A", "B", "C"), 10, monday, rand.New(rand.NewPCG(7, 7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestBuildCalendarFillsEstimates(t *testing.T) {
	ch := model.Channel{ID: "tech", Niche: model.NicheTechnology}
	o := []model.Opportunity{{TrendSignal: model.TrendSignal{Topic: "AI Tools 2025"}, ViralScore: 16.5, MonetizationPotential: 5}}
	entries, err := BuildCalendar(ch, o, 1, monday, fixedRand(0))
	if err != nil {
		t.Fatalf("BuildCalendar: %v", err)
	}
	if entries[0].EstimatedViews != 247500 || entries[0].EstimatedRevenue != 1113.75 {
		t.Fatalf("unexpected estimates: %+v", entries[0])
	}
}

func TestOverridesFallBackPerList(t *testing.T) {
	o := Overrides{model.AgeTeens: {Weekday: []string{"07:00"}}}
	p := o.Lookup(model.AgeTeens)
	if len(p.Weekday) != 1 || p.Weekday[0] != "07:00" {
		t.Fatalf("weekday override lost: %v", p.Weekday)
	}
	if len(p.Weekend) != 3 || p.Weekend[0] != "10:00" {
		t.Fatalf("weekend should fall back to built-in, got %v", p.Weekend)
	}
	var none Overrides
	if got := none.Lookup(model.AgeGroup("unknown")); got.Weekday[0] != "12:00" {
		t.Fatalf("nil overrides should return default table, got %v", got)
	}
}
