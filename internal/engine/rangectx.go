package engine

import "StructSnap/internal/domain/models"

// BuildRangeContext derives the long-horizon context block from the weekly,
// daily and 4h series. Every piece degrades independently: a window that is
// too short leaves its field nil/unknown and the rest of the context stands.
func BuildRangeContext(w1, d1, h4 *models.Series, pivW1, pivD1 []models.Pivot, p Params) models.RangeContext {
	ctx := models.RangeContext{
		RegimeW1:  models.RegimeUnknown,
		RegimeD1:  models.RegimeUnknown,
		VolFlagD1: models.VolUnknown,
	}

	if w1 != nil && w1.Len() > 0 {
		lo, hi := rangeExtremes(w1.Tail(p.RangeLookbackW1))
		ctx.W1Low, ctx.W1High = lo, hi
		eq := (lo + hi) / 2
		ctx.Equilibrium = eq
		band := p.BandFraction
		ctx.DiscountBand = models.Interval{Low: lo, High: lo + (eq-lo)*band*2}
		ctx.PremiumBand = models.Interval{Low: hi - (hi-eq)*band*2, High: hi}
	}

	var atrD1, atrW1, atrH4 *float64
	if d1 != nil {
		if v, err := ATR(d1.Candles, p.ATRPeriod); err == nil {
			atrD1 = &v
			ctx.ATRD1 = &v
		}
	}
	if w1 != nil {
		if v, err := ATR(w1.Candles, p.ATRPeriod); err == nil {
			atrW1 = &v
		}
	}
	if h4 != nil {
		if v, err := ATR(h4.Candles, p.ATRPeriod); err == nil {
			atrH4 = &v
			ctx.ATRH4 = &v
		}
	}

	if d1 != nil {
		if ema, err := EMA(d1.Candles, p.EMAPeriod); err == nil {
			ctx.EMA200D1 = &ema
		}
		ctx.RegimeD1 = classifyRegime(d1, atrD1, p)
		// chop refinement: a ranging daily regime with compressed 4h
		// volatility is downgraded to chop
		if ctx.RegimeD1 == models.RegimeRange && h4 != nil && atrH4 != nil {
			if base, err := atrBaseline(h4.Candles, p.ChopBaselineBars); err == nil {
				if *atrH4 < p.ChopATRFrac*base {
					ctx.RegimeD1 = models.RegimeChop
				}
			}
		}
		ctx.StructureD1 = buildStructureFlags(d1, pivD1)
		ctx.VolFlagD1 = classifyVol(atrD1, d1.LastClose(), p)
	}
	if w1 != nil {
		if ema, err := EMA(w1.Candles, p.EMAPeriod); err == nil {
			ctx.EMA200W1 = &ema
		}
		ctx.RegimeW1 = classifyRegime(w1, atrW1, p)
		ctx.StructureW1 = buildStructureFlags(w1, pivW1)
	}
	return ctx
}

// classifyRegime compares the EMA slope over the trailing window against an
// ATR-scaled threshold. Slope above the threshold is a trend, below is range.
func classifyRegime(s *models.Series, atr *float64, p Params) models.Regime {
	if atr == nil {
		return models.RegimeUnknown
	}
	series, err := EMASeries(s.Candles, p.EMAPeriod)
	if err != nil {
		return models.RegimeUnknown
	}
	slope, err := emaSlope(series, p.TrendSlopeBars)
	if err != nil {
		return models.RegimeUnknown
	}
	threshold := p.TrendSlopeATRFrac * *atr
	switch {
	case slope > threshold:
		return models.RegimeTrendUp
	case slope < -threshold:
		return models.RegimeTrendDown
	default:
		return models.RegimeRange
	}
}

func classifyVol(atr *float64, price float64, p Params) models.VolFlag {
	if atr == nil || price <= 0 {
		return models.VolUnknown
	}
	rel := *atr / price
	switch {
	case rel >= p.VolHighFrac:
		return models.VolHigh
	case rel <= p.VolLowFrac:
		return models.VolLow
	default:
		return models.VolNormal
	}
}

// buildStructureFlags records the most recent confirmed swing on each side and
// whether the latest close has broken it.
func buildStructureFlags(s *models.Series, pivots []models.Pivot) models.StructureFlags {
	var flags models.StructureFlags
	for i := len(pivots) - 1; i >= 0; i-- {
		p := pivots[i]
		if p.Kind == models.PivotHigh && flags.LastSwingHigh == nil {
			price := p.Price
			flags.LastSwingHigh = &price
		}
		if p.Kind == models.PivotLow && flags.LastSwingLow == nil {
			price := p.Price
			flags.LastSwingLow = &price
		}
		if flags.LastSwingHigh != nil && flags.LastSwingLow != nil {
			break
		}
	}
	close := s.LastClose()
	if flags.LastSwingHigh != nil && close > *flags.LastSwingHigh {
		flags.CloseBreakUp = true
	}
	if flags.LastSwingLow != nil && close < *flags.LastSwingLow {
		flags.CloseBreakDown = true
	}
	return flags
}

func rangeExtremes(candles []models.Candle) (lo, hi float64) {
	if len(candles) == 0 {
		return 0, 0
	}
	lo, hi = candles[0].Low, candles[0].High
	for _, c := range candles[1:] {
		if c.Low < lo {
			lo = c.Low
		}
		if c.High > hi {
			hi = c.High
		}
	}
	return lo, hi
}
