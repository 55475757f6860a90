package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/internal/domain/models"
)

func zoneAt(tier models.Tier, side models.Side, low, high float64, strength int) models.Zone {
	return models.Zone{
		Tier:     tier,
		Side:     side,
		Core:     models.Interval{Low: low, High: high},
		Buffer:   models.Interval{Low: low - 1, High: high + 1},
		Strength: strength,
	}
}

func TestSelectZonesSidesAndOrder(t *testing.T) {
	price := 100.0
	zones := []models.Zone{
		zoneAt(models.TierOperational, models.SideSupport, 90, 91, 2),
		zoneAt(models.TierOperational, models.SideSupport, 97, 98, 2),
		zoneAt(models.TierStructural, models.SideResistance, 103, 104, 3),
		zoneAt(models.TierStructural, models.SideResistance, 110, 111, 3),
		zoneAt(models.TierMacro, models.SideResistance, 120, 125, 5),
	}
	supports, resistances := SelectZones(zones, price, 4)

	require.Len(t, supports, 2)
	assert.Equal(t, 98.0, supports[0].Core.High) // nearest first
	assert.Equal(t, 91.0, supports[1].Core.High)

	require.Len(t, resistances, 3)
	assert.Equal(t, 103.0, resistances[0].Core.Low)
	assert.Equal(t, 110.0, resistances[1].Core.Low)
	assert.Equal(t, 120.0, resistances[2].Core.Low)
}

func TestSelectZonesCapsPerSide(t *testing.T) {
	price := 100.0
	var zones []models.Zone
	for i := 0; i < 6; i++ {
		lo := 95.0 - float64(i)
		zones = append(zones, zoneAt(models.TierOperational, models.SideSupport, lo, lo+0.5, 1))
	}
	supports, resistances := SelectZones(zones, price, 4)
	assert.Len(t, supports, 4)
	assert.Empty(t, resistances)
}

func TestSelectZonesTieBreakPrefersCoarserTier(t *testing.T) {
	price := 100.0
	zones := []models.Zone{
		zoneAt(models.TierOperational, models.SideSupport, 95, 96, 5),
		zoneAt(models.TierMacro, models.SideSupport, 95, 96, 1),
	}
	supports, _ := SelectZones(zones, price, 4)
	require.Len(t, supports, 2)
	assert.Equal(t, models.TierMacro, supports[0].Tier)
}

func TestSelectZonesSkipsCoreContainingPrice(t *testing.T) {
	zones := []models.Zone{
		zoneAt(models.TierStructural, models.SideSupport, 99, 101, 3),
	}
	supports, resistances := SelectZones(zones, 100, 4)
	assert.Empty(t, supports)
	assert.Empty(t, resistances)
}

func TestSortZonesCanonicalDeterministic(t *testing.T) {
	zones := []models.Zone{
		zoneAt(models.TierOperational, models.SideResistance, 103, 104, 1),
		zoneAt(models.TierMacro, models.SideSupport, 90, 91, 1),
		zoneAt(models.TierMacro, models.SideSupport, 80, 81, 1),
		zoneAt(models.TierStructural, models.SideSupport, 95, 96, 1),
	}
	SortZonesCanonical(zones)

	assert.Equal(t, models.TierMacro, zones[0].Tier)
	assert.Equal(t, 80.0, zones[0].Core.Low)
	assert.Equal(t, 90.0, zones[1].Core.Low)
	assert.Equal(t, models.TierStructural, zones[2].Tier)
	assert.Equal(t, models.TierOperational, zones[3].Tier)
}

func TestBuildWorkingZones(t *testing.T) {
	p := DefaultParams()
	supports := []models.Zone{zoneAt(models.TierStructural, models.SideSupport, 95, 97, 4)}
	resistances := []models.Zone{zoneAt(models.TierMacro, models.SideResistance, 110, 112, 5)}

	wz := BuildWorkingZones(supports, resistances, atrPtr(2.0), 100, p)
	require.Len(t, wz, 2)

	assert.Equal(t, models.SideSupport, wz[0].Side)
	assert.Equal(t, models.TierStructural, wz[0].FromTier)
	assert.InDelta(t, 96.0, wz[0].Center, 1e-9)
	assert.InDelta(t, 96.0-1.5, wz[0].Band.Low, 1e-9) // workK 0.75 * atr 2
	assert.InDelta(t, 96.0+1.5, wz[0].Band.High, 1e-9)
	assert.Equal(t, 4, wz[0].Strength)

	assert.Equal(t, models.SideResistance, wz[1].Side)
	assert.InDelta(t, 111.0, wz[1].Center, 1e-9)
}
