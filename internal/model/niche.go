package model

import "strings"

// Niche is the content category that drives every per-niche table.
type Niche string

const (
	NicheTechnology    Niche = "technology"
	NicheHealth        Niche = "health"
	NicheLifestyle     Niche = "lifestyle"
	NicheGaming        Niche = "gaming"
	NicheMotivation    Niche = "motivation"
	NicheEducationKids Niche = "education_kids"
)

// Niches lists the known niches in display order.
var Niches = []Niche{NicheTechnology, NicheHealth, NicheLifestyle, NicheGaming, NicheMotivation, NicheEducationKids}

// ParseNiche lowercases and trims s. Unknown values are returned as-is and
// fall through to the default branch of every table.
func ParseNiche(s string) Niche { return Niche(strings.ToLower(strings.TrimSpace(s))) }

// Known reports whether n is one of the configured niches.
func (n Niche) Known() bool {
	switch n {
	case NicheTechnology, NicheHealth, NicheLifestyle, NicheGaming, NicheMotivation, NicheEducationKids:
		return true
	default:
		return false
	}
}

type nicheRates struct {
	monetizationBase float64
	viewMultiplier   float64
	rpm              float64
}

func (n Niche) rates() nicheRates {
	switch n {
	case NicheTechnology:
		return nicheRates{monetizationBase: 3.5, viewMultiplier: 1.5, rpm: 4.50}
	case NicheHealth:
		return nicheRates{monetizationBase: 3.0, viewMultiplier: 1.4, rpm: 3.80}
	case NicheLifestyle:
		return nicheRates{monetizationBase: 2.5, viewMultiplier: 1.3, rpm: 2.20}
	case NicheGaming:
		return nicheRates{monetizationBase: 2.0, viewMultiplier: 2.0, rpm: 1.80}
	case NicheMotivation:
		return nicheRates{monetizationBase: 2.8, viewMultiplier: 1.8, rpm: 3.20}
	case NicheEducationKids:
		return nicheRates{monetizationBase: 2.2, viewMultiplier: 2.5, rpm: 1.50}
	default:
		return nicheRates{monetizationBase: 2.0, viewMultiplier: 1.0, rpm: 2.00}
	}
}

// MonetizationBase is the starting monetization score for the niche (default 2.0).
func (n Niche) MonetizationBase() float64 { return n.rates().monetizationBase }

// ViewMultiplier scales estimated views for the niche (default 1.0).
func (n Niche) ViewMultiplier() float64 { return n.rates().viewMultiplier }

// RPM is revenue per thousand views for the niche (default 2.00).
func (n Niche) RPM() float64 { return n.rates().rpm }

// AgeGroup is the target-audience bracket that keys posting-time tables.
type AgeGroup string

const (
	AgeKids         AgeGroup = "3-12"
	AgeTeens        AgeGroup = "13-30"
	AgeYoungAdults  AgeGroup = "18-35"
	AgeAdults       AgeGroup = "25-50"
	AgeMatureAdults AgeGroup = "25-60"
	AgeAllAdults    AgeGroup = "16-65"
)

// DefaultAgeGroup is used for any unrecognised bracket.
const DefaultAgeGroup = AgeYoungAdults

// Normalize maps unknown brackets to DefaultAgeGroup.
func (g AgeGroup) Normalize() AgeGroup {
	switch g {
	case AgeKids, AgeTeens, AgeYoungAdults, AgeAdults, AgeMatureAdults, AgeAllAdults:
		return g
	default:
		return DefaultAgeGroup
	}
}

// Strategy is one monetization channel a creator uses.
type Strategy string

const (
	StrategyAds          Strategy = "ads"
	StrategyAffiliate    Strategy = "affiliate"
	StrategyCourses      Strategy = "courses"
	StrategySponsorships Strategy = "sponsorships"
	StrategyMerchandise  Strategy = "merchandise"
)

// Urgency flags time-sensitive signals.
type Urgency string

const UrgencyHigh Urgency = "high"

// Source names where a signal was discovered.
type Source string

const (
	SourcePlatform   Source = "platform"
	SourceSearch     Source = "search"
	SourceCompetitor Source = "competitor"
	SourceSeasonal   Source = "seasonal"
)
