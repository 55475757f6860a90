package models

import "time"

// PivotKind tells whether a pivot is a swing high or a swing low.
type PivotKind string

const (
	PivotHigh PivotKind = "high"
	PivotLow  PivotKind = "low"
)

// Pivot is a local price extreme detected at a timeframe. Derived fact, never mutated.
type Pivot struct {
	Timeframe Timeframe `json:"tf"`
	Kind      PivotKind `json:"kind"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"t"`
	Strength  int       `json:"strength"` // 1..5, window dominance
}

// Tier is zone granularity, coarsest = macro.
type Tier string

const (
	TierOperational Tier = "operational" // H4 pivots
	TierStructural  Tier = "structural"  // D1 pivots
	TierMacro       Tier = "macro"       // W1 pivots
)

// Rank orders tiers for tie-breaking: macro > structural > operational.
func (t Tier) Rank() int {
	switch t {
	case TierMacro:
		return 3
	case TierStructural:
		return 2
	case TierOperational:
		return 1
	default:
		return 0
	}
}

// Timeframe returns the candle resolution a tier's zones are built from.
func (t Tier) Timeframe() Timeframe {
	switch t {
	case TierMacro:
		return TFW1
	case TierStructural:
		return TFD1
	default:
		return TFH4
	}
}

// ReplayTimeframe returns the resolution used to replay history against a
// tier's zones: H4 for operational, D1 for the coarser tiers.
func (t Tier) ReplayTimeframe() Timeframe {
	if t == TierOperational {
		return TFH4
	}
	return TFD1
}

// Side is the zone position relative to price at evaluation time.
type Side string

const (
	SideSupport    Side = "support"
	SideResistance Side = "resistance"
)

// Character classifies the historical interaction pattern of a zone.
type Character string

const (
	CharacterBounce  Character = "bounce"
	CharacterMagnet  Character = "magnet"
	CharacterMixed   Character = "mixed"
	CharacterUnknown Character = "unknown"
)

// Interval is a closed price interval [Low, High].
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Width returns High-Low.
func (iv Interval) Width() float64 { return iv.High - iv.Low }

// Contains reports whether p lies inside the interval.
func (iv Interval) Contains(p float64) bool { return p >= iv.Low && p <= iv.High }

// Covers reports whether the interval fully contains other.
func (iv Interval) Covers(other Interval) bool {
	return iv.Low <= other.Low && iv.High >= other.High
}

// Overlaps reports whether two intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Low <= other.High && iv.High >= other.Low
}

// ZoneStats is the outcome of replaying price history against a zone.
// Reactions+Failures <= Tests; pending tests absorb the remainder.
type ZoneStats struct {
	Tests                 int     `json:"tests"`
	Reactions             int     `json:"reactions"`
	Failures              int     `json:"failures"`
	ReactionRate          float64 `json:"reaction_rate"`
	FailureRate           float64 `json:"failure_rate"`
	DaysSinceLastTest     *int    `json:"days_since_last_test"`
	DaysSinceLastReaction *int    `json:"days_since_last_reaction"`
}

// Zone is a support/resistance area: a core reaction interval plus an
// ATR-sized tolerance buffer around it. Built once per run, immutable after
// the replayer fills Stats.
type Zone struct {
	Tier       Tier      `json:"tier"`
	Side       Side      `json:"side"`
	Core       Interval  `json:"core"`
	Buffer     Interval  `json:"buffer"`
	Character  Character `json:"character"`
	Strength   int       `json:"strength"` // 1..5
	PivotCount int       `json:"pivot_count"`
	Stats      ZoneStats `json:"stats"`
}

// Distance returns the absolute price distance from the zone core to price;
// zero when price is inside the core.
func (z Zone) Distance(price float64) float64 {
	switch {
	case price > z.Core.High:
		return price - z.Core.High
	case price < z.Core.Low:
		return z.Core.Low - price
	default:
		return 0
	}
}

// Valid checks the structural invariants every emitted zone must satisfy.
func (z Zone) Valid() bool {
	if z.Core.Low > z.Core.High {
		return false
	}
	if !z.Buffer.Covers(z.Core) {
		return false
	}
	if z.Stats.Reactions+z.Stats.Failures > z.Stats.Tests {
		return false
	}
	return true
}
