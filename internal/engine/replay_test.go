package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
)

func supportZone(bufLow, bufHigh float64) models.Zone {
	mid := (bufLow + bufHigh) / 2
	return models.Zone{
		Tier:   models.TierStructural,
		Side:   models.SideSupport,
		Core:   models.Interval{Low: mid, High: mid},
		Buffer: models.Interval{Low: bufLow, High: bufHigh},
	}
}

func TestReplayZoneReactionAndFailure(t *testing.T) {
	z := supportZone(99, 101)
	bars := []bar{
		{o: 105, h: 106, l: 104, c: 105}, // above, no touch
		{o: 105, h: 106, l: 100, c: 105}, // dips in, closes back above: reaction
		{o: 105, h: 106, l: 95, c: 95},   // cuts through, closes below: failure
	}
	s := barsToSeries(models.TFD1, bars)
	asOf := s.LastTimestamp().Add(24 * time.Hour)

	st := ReplayZone(z, s.Candles, asOf, DefaultParams())
	assert.Equal(t, 2, st.Tests)
	assert.Equal(t, 1, st.Reactions)
	assert.Equal(t, 1, st.Failures)
	assert.InDelta(t, 0.5, st.ReactionRate, 1e-9)
	assert.InDelta(t, 0.5, st.FailureRate, 1e-9)
}

func TestReplayZoneMultiCandleTest(t *testing.T) {
	z := supportZone(99, 101)
	bars := []bar{
		{o: 105, h: 106, l: 104, c: 105},
		{o: 105, h: 105, l: 99.5, c: 100},   // enters, closes inside
		{o: 100, h: 100.5, l: 99.2, c: 100}, // still inside
		{o: 100, h: 103, l: 100, c: 103},    // exits on the entry side
	}
	s := barsToSeries(models.TFD1, bars)
	asOf := s.LastTimestamp().Add(24 * time.Hour)

	st := ReplayZone(z, s.Candles, asOf, DefaultParams())
	assert.Equal(t, 1, st.Tests)
	assert.Equal(t, 1, st.Reactions)
	assert.Equal(t, 0, st.Failures)
}

func TestReplayZoneSlowExitIsNoOutcome(t *testing.T) {
	p := DefaultParams()
	p.MaxTestBars = 2
	z := supportZone(99, 101)
	bars := []bar{
		{o: 105, h: 106, l: 104, c: 105},
		{o: 105, h: 105, l: 99.5, c: 100},
		{o: 100, h: 100.5, l: 99.2, c: 100},
		{o: 100, h: 100.5, l: 99.2, c: 100},
		{o: 100, h: 103, l: 100, c: 103}, // entry-side exit after 4 bars
	}
	s := barsToSeries(models.TFD1, bars)
	asOf := s.LastTimestamp().Add(24 * time.Hour)

	st := ReplayZone(z, s.Candles, asOf, p)
	assert.Equal(t, 1, st.Tests)
	assert.Equal(t, 0, st.Reactions)
	assert.Equal(t, 0, st.Failures)
}

func TestReplayZonePendingTest(t *testing.T) {
	z := supportZone(99, 101)
	bars := []bar{
		{o: 105, h: 106, l: 104, c: 105},
		{o: 105, h: 105, l: 99.5, c: 100}, // open test at end of history
	}
	s := barsToSeries(models.TFD1, bars)
	asOf := s.LastTimestamp().Add(24 * time.Hour)

	st := ReplayZone(z, s.Candles, asOf, DefaultParams())
	assert.Equal(t, 1, st.Tests)
	assert.Equal(t, 0, st.Reactions)
	assert.Equal(t, 0, st.Failures)
	require.NotNil(t, st.DaysSinceLastTest)
	assert.Equal(t, 1, *st.DaysSinceLastTest)
	assert.Nil(t, st.DaysSinceLastReaction)
}

func TestReplayZoneRecencyAgainstAsOf(t *testing.T) {
	z := supportZone(99, 101)
	bars := []bar{
		{o: 105, h: 106, l: 104, c: 105},
		{o: 105, h: 106, l: 100, c: 105}, // reaction
		{o: 105, h: 106, l: 104, c: 105},
		{o: 105, h: 106, l: 104, c: 105},
	}
	s := barsToSeries(models.TFD1, bars)
	asOf := s.LastTimestamp().Add(24 * time.Hour)

	st := ReplayZone(z, s.Candles, asOf, DefaultParams())
	require.NotNil(t, st.DaysSinceLastReaction)
	assert.Equal(t, 3, *st.DaysSinceLastReaction)

	// same history, same asOf: identical stats regardless of wall clock
	again := ReplayZone(z, s.Candles, asOf, DefaultParams())
	assert.Equal(t, st, again)
}

func TestDeriveCharacter(t *testing.T) {
	p := DefaultParams()
	cases := []struct {
		name string
		st   models.ZoneStats
		want models.Character
	}{
		{"untested", models.ZoneStats{}, models.CharacterUnknown},
		{"single perfect test", models.ZoneStats{Tests: 1, Reactions: 1, ReactionRate: 1}, models.CharacterBounce},
		{"bounce", models.ZoneStats{Tests: 5, Reactions: 4, ReactionRate: 0.8, FailureRate: 0.2}, models.CharacterBounce},
		{"magnet", models.ZoneStats{Tests: 5, Failures: 4, ReactionRate: 0.2, FailureRate: 0.8}, models.CharacterMagnet},
		{"mixed", models.ZoneStats{Tests: 4, Reactions: 2, Failures: 2, ReactionRate: 0.5, FailureRate: 0.5}, models.CharacterMixed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveCharacter(tc.st, p))
		})
	}
}

func TestDeriveCharacterMinTestsGate(t *testing.T) {
	p := DefaultParams()
	p.MinCharacterTests = 3
	st := models.ZoneStats{Tests: 2, Reactions: 2, ReactionRate: 1}
	assert.Equal(t, models.CharacterUnknown, DeriveCharacter(st, p))

	st.Tests, st.Reactions = 3, 3
	assert.Equal(t, models.CharacterBounce, DeriveCharacter(st, p))
}

func TestScoreStrength(t *testing.T) {
	// untested zones never exceed 3, evidence accumulates toward 5
	assert.Equal(t, 3, ScoreStrength(6, 5, models.ZoneStats{Tests: 1}))
	assert.Equal(t, 1, ScoreStrength(1, 1, models.ZoneStats{}))
	assert.Equal(t, 4, ScoreStrength(3, 2, models.ZoneStats{Tests: 4, Reactions: 3}))
	assert.Equal(t, 5, ScoreStrength(8, 5, models.ZoneStats{Tests: 10, Reactions: 8}))
}
