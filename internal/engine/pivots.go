package engine

import "StructSnap/internal/domain/models"

const maxPivotStrength = 5

// DetectPivots finds swing highs and lows in a series using a symmetric
// look-around window of k candles on each side. A swing high is a candle whose
// high strictly exceeds every other high in the window; on an exact tie the
// earliest candle wins and the later one is not a pivot. Lows mirror this.
// Series shorter than 2k+1 yield no pivots.
func DetectPivots(s *models.Series, k int) []models.Pivot {
	n := s.Len()
	if k <= 0 || n < 2*k+1 {
		return nil
	}
	candles := s.Candles
	pivots := make([]models.Pivot, 0, n/8)
	for i := k; i < n-k; i++ {
		if isSwingHigh(candles, i, k) {
			pivots = append(pivots, models.Pivot{
				Timeframe: s.Timeframe,
				Kind:      models.PivotHigh,
				Price:     candles[i].High,
				Timestamp: candles[i].Timestamp,
				Strength:  pivotStrength(candles, i, k, models.PivotHigh),
			})
		}
		if isSwingLow(candles, i, k) {
			pivots = append(pivots, models.Pivot{
				Timeframe: s.Timeframe,
				Kind:      models.PivotLow,
				Price:     candles[i].Low,
				Timestamp: candles[i].Timestamp,
				Strength:  pivotStrength(candles, i, k, models.PivotLow),
			})
		}
	}
	return pivots
}

func isSwingHigh(c []models.Candle, i, k int) bool {
	h := c[i].High
	for j := i - k; j <= i+k; j++ {
		if j == i {
			continue
		}
		if c[j].High > h {
			return false
		}
		// flat plateau resolves to the earliest candle
		if c[j].High == h && j < i {
			return false
		}
	}
	return true
}

func isSwingLow(c []models.Candle, i, k int) bool {
	l := c[i].Low
	for j := i - k; j <= i+k; j++ {
		if j == i {
			continue
		}
		if c[j].Low < l {
			return false
		}
		if c[j].Low == l && j < i {
			return false
		}
	}
	return true
}

// pivotStrength measures window dominance: the distance in candles to the
// nearest candle on either side with a more extreme price, capped at both the
// detection window and the 1..5 scale.
func pivotStrength(c []models.Candle, i, k int, kind models.PivotKind) int {
	dominates := func(j int) bool {
		if kind == models.PivotHigh {
			return c[j].High > c[i].High
		}
		return c[j].Low < c[i].Low
	}
	left := k
	for j := i - 1; j >= 0 && i-j <= k; j-- {
		if dominates(j) {
			left = i - j
			break
		}
	}
	right := k
	for j := i + 1; j < len(c) && j-i <= k; j++ {
		if dominates(j) {
			right = j - i
			break
		}
	}
	s := left
	if right < s {
		s = right
	}
	if s > maxPivotStrength {
		s = maxPivotStrength
	}
	if s < 1 {
		s = 1
	}
	return s
}
