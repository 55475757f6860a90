package engine

import "StructSnap/internal/domain/models"

// Params holds all engine tuning constants. Calibrated values are domain
// tuning, not architecture: everything here is overridable from configuration.
type Params struct {
	// Pivot detection half-window per timeframe.
	PivotWindow map[models.Timeframe]int

	// ATR window length.
	ATRPeriod int

	// Single-link clustering gap threshold per tier, in ATR multiples of the
	// tier's timeframe.
	MergeK map[models.Tier]float64

	// Buffer half-expansion per tier, in ATR multiples.
	BufferK map[models.Tier]float64

	// Working-zone half-width in ATR(H4) multiples (full variant).
	WorkK float64

	// Only the trailing N pivots per timeframe feed the clusterer.
	MaxPivotsPerTF int

	// Fallbacks when ATR is unavailable at a tier's timeframe, as fractions
	// of current price.
	FallbackMergeFrac  float64
	FallbackBufferFrac float64

	// A straddling cluster half below this width (ATR fraction) is dropped.
	MinSplitWidthATRFrac float64

	// Replay classification.
	MaxTestBars    int
	ReplayLookback map[models.Timeframe]int

	// Character thresholds (fixed configuration, not learned). A zone needs
	// at least MinCharacterTests tests before it earns any tag.
	BounceThreshold   float64
	MagnetThreshold   float64
	MinCharacterTests int

	// Range / trend context.
	RangeLookbackW1   int
	BandFraction      float64
	EMAPeriod         int
	TrendSlopeBars    int
	TrendSlopeATRFrac float64
	ChopATRFrac       float64
	ChopBaselineBars  int
	VolHighFrac       float64
	VolLowFrac        float64

	// Selection depth per side.
	SelectPerSide int
}

// DefaultParams returns the conservative defaults.
func DefaultParams() Params {
	return Params{
		PivotWindow: map[models.Timeframe]int{
			models.TFW1: 2,
			models.TFD1: 2,
			models.TFH4: 2,
		},
		ATRPeriod: 14,
		MergeK: map[models.Tier]float64{
			models.TierMacro:       0.40,
			models.TierStructural:  0.35,
			models.TierOperational: 0.30,
		},
		BufferK: map[models.Tier]float64{
			models.TierMacro:       0.85,
			models.TierStructural:  0.65,
			models.TierOperational: 0.50,
		},
		WorkK:                0.75,
		MaxPivotsPerTF:       40,
		FallbackMergeFrac:    0.004,
		FallbackBufferFrac:   0.010,
		MinSplitWidthATRFrac: 0.10,
		MaxTestBars:          10,
		ReplayLookback: map[models.Timeframe]int{
			models.TFH4: 500,
			models.TFD1: 400,
		},
		BounceThreshold:   0.60,
		MagnetThreshold:   0.60,
		MinCharacterTests: 1,
		RangeLookbackW1:   52,
		BandFraction:      1.0 / 3.0,
		EMAPeriod:         200,
		TrendSlopeBars:    10,
		TrendSlopeATRFrac: 0.25,
		ChopATRFrac:       0.80,
		ChopBaselineBars:  120,
		VolHighFrac:       0.04,
		VolLowFrac:        0.015,
		SelectPerSide:     4,
	}
}
