package models

import "time"

// Regime is the coarse trend classification for a timeframe.
type Regime string

const (
	RegimeTrendUp   Regime = "trend_up"
	RegimeTrendDown Regime = "trend_down"
	RegimeRange     Regime = "range"
	RegimeChop      Regime = "chop"
	RegimeUnknown   Regime = "unknown"
)

// VolFlag is a descriptive volatility bucket from ATR(D1) relative to price.
type VolFlag string

const (
	VolHigh    VolFlag = "high"
	VolNormal  VolFlag = "normal"
	VolLow     VolFlag = "low"
	VolUnknown VolFlag = "unknown"
)

// StructureFlags carries break-of-structure metadata per timeframe.
type StructureFlags struct {
	LastSwingHigh  *float64 `json:"last_swing_high"`
	LastSwingLow   *float64 `json:"last_swing_low"`
	CloseBreakUp   bool     `json:"close_break_up"`
	CloseBreakDown bool     `json:"close_break_down"`
}

// RangeContext is long-horizon context recomputed fully each run.
// Pointer fields are nil when the backing computation was unavailable
// (InsufficientHistory degraded gracefully).
type RangeContext struct {
	W1Low        float64        `json:"w1_low"`
	W1High       float64        `json:"w1_high"`
	Equilibrium  float64        `json:"equilibrium"`
	DiscountBand Interval       `json:"discount_band"`
	PremiumBand  Interval       `json:"premium_band"`
	EMA200D1     *float64       `json:"ema200_d1"`
	EMA200W1     *float64       `json:"ema200_w1"`
	ATRD1        *float64       `json:"atr_d1"`
	ATRH4        *float64       `json:"atr_h4"`
	RegimeW1     Regime         `json:"regime_w1"`
	RegimeD1     Regime         `json:"regime_d1"`
	VolFlagD1    VolFlag        `json:"vol_flag_d1"`
	StructureW1  StructureFlags `json:"structure_w1"`
	StructureD1  StructureFlags `json:"structure_d1"`
}

// WorkingZone is a short-horizon trading band derived from a selected zone,
// re-buffered with the H4 ATR. Full variant only.
type WorkingZone struct {
	Side     Side     `json:"side"`
	FromTier Tier     `json:"from_tier"`
	Center   float64  `json:"center"`
	Band     Interval `json:"band"`
	Strength int      `json:"strength"`
}

// Variant selects which published snapshot shape is meant.
type Variant string

const (
	VariantSwing Variant = "swing" // compact: context + 4/4 selected zones
	VariantFull  Variant = "full"  // extended: + full zone set + working zones
)

// Snapshot is the published output for one symbol. Created once per run,
// never mutated; each run's snapshot supersedes the previous "latest".
type Snapshot struct {
	Symbol      string       `json:"symbol"`
	GeneratedAt time.Time    `json:"generated_at"`
	AsOf        time.Time    `json:"as_of"` // close time of the most recent ingested candle
	Price       float64      `json:"price"`
	Range       RangeContext `json:"range"`
	// Nearest-to-price first, at most four per side.
	Supports    []Zone `json:"supports"`
	Resistances []Zone `json:"resistances"`
	// Full variant extras; empty in the swing variant.
	AllZones     []Zone        `json:"all_zones,omitempty"`
	WorkingZones []WorkingZone `json:"working_zones,omitempty"`
	Fingerprint  string        `json:"fingerprint"`
}
