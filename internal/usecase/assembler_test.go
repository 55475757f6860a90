package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
	"StructSnap/internal/engine"
)

func TestAssembleRequiresH4(t *testing.T) {
	a := NewSnapshotAssembler(engine.DefaultParams(), testLogger())
	_, _, err := a.Assemble(AssembleInput{Symbol: "BTCUSDT", Price: 100, Series: SeriesSet{}})
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}

func TestAssembleBuildsBothSides(t *testing.T) {
	a := NewSnapshotAssembler(engine.DefaultParams(), testLogger())
	h4 := h4Series(80, 100, 95, 105)

	snap, _, err := a.Assemble(AssembleInput{
		Symbol: "BTCUSDT",
		Price:  100,
		Series: SeriesSet{models.TFH4: h4},
		Now:    testEpoch.Add(400 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, "BTCUSDT", snap.Symbol)
	assert.NotEmpty(t, snap.Fingerprint)
	assert.NotEmpty(t, snap.Supports)
	assert.NotEmpty(t, snap.Resistances)
	for _, z := range snap.Supports {
		assert.Less(t, z.Core.High, 100.0)
	}
	for _, z := range snap.Resistances {
		assert.Greater(t, z.Core.Low, 100.0)
	}

	// close time of the newest 4h bar
	wantAsOf := h4.LastTimestamp().Add(models.TFH4.Duration())
	assert.True(t, snap.AsOf.Equal(wantAsOf))

	v := NewSnapshotValidator(engine.DefaultParams().SelectPerSide)
	assert.NoError(t, v.Validate(snap))
}

func TestAssemblePriceFallsBackToLastClose(t *testing.T) {
	a := NewSnapshotAssembler(engine.DefaultParams(), testLogger())
	h4 := h4Series(40, 100, 95, 105)

	snap, _, err := a.Assemble(AssembleInput{
		Symbol: "BTCUSDT",
		Price:  0,
		Series: SeriesSet{models.TFH4: h4},
		Now:    testEpoch.Add(400 * time.Hour),
	})
	require.NoError(t, err)
	assert.InDelta(t, h4.LastClose(), snap.Price, 1e-9)
}

func TestAssembleDeterministicFingerprint(t *testing.T) {
	a := NewSnapshotAssembler(engine.DefaultParams(), testLogger())
	h4 := h4Series(80, 100, 95, 105)

	in := AssembleInput{
		Symbol: "BTCUSDT",
		Price:  100,
		Series: SeriesSet{models.TFH4: h4},
		Now:    testEpoch.Add(400 * time.Hour),
	}
	first, _, err := a.Assemble(in)
	require.NoError(t, err)

	in.Now = in.Now.Add(90 * time.Minute)
	second, _, err := a.Assemble(in)
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}
