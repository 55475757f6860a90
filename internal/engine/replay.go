package engine

import (
	"time"

	"StructSnap/internal/domain/models"
)

type bufferSide int

const (
	sideInside bufferSide = iota
	sideAbove
	sideBelow
)

// ReplayZone walks the candle history through a zone's buffer and counts test
// episodes. A test opens when a candle's range intersects the buffer and stays
// open while closes remain inside; it closes on the first close outside.
//
// Exit on the entry side within MaxTestBars is a reaction, exit on the far
// side is a failure, a slow same-side exit or a still-open test at the end of
// history counts as a test with no outcome. Recency is measured against asOf,
// the close time of the newest candle, so replaying the same history always
// yields the same stats.
func ReplayZone(z models.Zone, candles []models.Candle, asOf time.Time, p Params) models.ZoneStats {
	var st models.ZoneStats
	var lastTest, lastReaction *time.Time

	buf := z.Buffer
	prev := entryDefault(z.Side)
	inTest := false
	entry := prev
	bars := 0

	for _, c := range candles {
		touches := c.Low <= buf.High && c.High >= buf.Low
		if !inTest {
			if !touches {
				prev = closeSide(c.Close, buf)
				continue
			}
			st.Tests++
			inTest = true
			bars = 0
			if prev != sideInside {
				entry = prev
			} else {
				entry = entryDefault(z.Side)
			}
		}
		bars++
		ts := c.Timestamp
		lastTest = &ts

		exit := closeSide(c.Close, buf)
		if exit == sideInside {
			prev = sideInside
			continue
		}
		if exit == entry && bars <= p.MaxTestBars {
			st.Reactions++
			rt := c.Timestamp
			lastReaction = &rt
		} else if exit != entry {
			st.Failures++
		}
		inTest = false
		prev = exit
	}
	// a test still open at the end of history stays pending: counted,
	// no outcome

	if st.Tests > 0 {
		st.ReactionRate = float64(st.Reactions) / float64(st.Tests)
		st.FailureRate = float64(st.Failures) / float64(st.Tests)
	}
	if lastTest != nil {
		st.DaysSinceLastTest = daysBetween(*lastTest, asOf)
	}
	if lastReaction != nil {
		st.DaysSinceLastReaction = daysBetween(*lastReaction, asOf)
	}
	return st
}

// DeriveCharacter maps replay stats to a behavior tag. A zone with fewer than
// MinCharacterTests tests stays unknown.
func DeriveCharacter(st models.ZoneStats, p Params) models.Character {
	if st.Tests < p.MinCharacterTests {
		return models.CharacterUnknown
	}
	switch {
	case st.ReactionRate >= p.BounceThreshold:
		return models.CharacterBounce
	case st.FailureRate >= p.MagnetThreshold:
		return models.CharacterMagnet
	default:
		return models.CharacterMixed
	}
}

// ScoreStrength folds cluster weight and replay evidence into the 1..5 scale.
// Zones with at most one test are capped at 3 regardless of cluster weight.
func ScoreStrength(pivotCount, pivotStrength int, st models.ZoneStats) int {
	score := pivotCount + pivotStrength + st.Tests + 2*st.Reactions
	strength := 1 + score/4
	if strength > 5 {
		strength = 5
	}
	if st.Tests <= 1 && strength > 3 {
		strength = 3
	}
	if strength < 1 {
		strength = 1
	}
	return strength
}

// FinishZone runs replay, character and strength for one built zone and
// returns the completed immutable zone.
func FinishZone(bz BuiltZone, candles []models.Candle, asOf time.Time, p Params) models.Zone {
	z := bz.Zone
	z.Stats = ReplayZone(z, candles, asOf, p)
	z.Character = DeriveCharacter(z.Stats, p)
	z.Strength = ScoreStrength(z.PivotCount, bz.PivotStrength, z.Stats)
	return z
}

func closeSide(close float64, buf models.Interval) bufferSide {
	switch {
	case close > buf.High:
		return sideAbove
	case close < buf.Low:
		return sideBelow
	default:
		return sideInside
	}
}

// entryDefault assumes the natural approach direction when history starts
// inside the buffer: supports are approached from above, resistances from
// below.
func entryDefault(side models.Side) bufferSide {
	if side == models.SideSupport {
		return sideAbove
	}
	return sideBelow
}

func daysBetween(from, to time.Time) *int {
	d := int(to.Sub(from).Hours() / 24)
	if d < 0 {
		d = 0
	}
	return &d
}
