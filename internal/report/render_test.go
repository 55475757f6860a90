package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"StructSnap/internal/domain/models"
)

func sampleSnapshot() *models.Snapshot {
	atrD1 := 2.5
	days := 3
	return &models.Snapshot{
		Symbol:      "BTCUSDT",
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		AsOf:        time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		Price:       100,
		Range: models.RangeContext{
			W1Low: 80, W1High: 120, Equilibrium: 100,
			DiscountBand: models.Interval{Low: 80, High: 93.3333},
			PremiumBand:  models.Interval{Low: 106.6667, High: 120},
			ATRD1:        &atrD1,
			RegimeW1:     models.RegimeRange,
			RegimeD1:     models.RegimeTrendUp,
			VolFlagD1:    models.VolNormal,
			StructureD1:  models.StructureFlags{CloseBreakUp: true},
		},
		Supports: []models.Zone{{
			Tier: models.TierStructural, Side: models.SideSupport,
			Core:      models.Interval{Low: 94, High: 95},
			Buffer:    models.Interval{Low: 93, High: 96},
			Character: models.CharacterBounce, Strength: 4, PivotCount: 3,
			Stats: models.ZoneStats{
				Tests: 4, Reactions: 3, ReactionRate: 0.75,
				DaysSinceLastTest: &days,
			},
		}},
		WorkingZones: []models.WorkingZone{{
			Side: models.SideSupport, FromTier: models.TierStructural,
			Center: 94.5, Band: models.Interval{Low: 93.5, High: 95.5}, Strength: 4,
		}},
		Fingerprint: "cafe01",
	}
}

func TestRenderSections(t *testing.T) {
	out := NewRenderer().Render(sampleSnapshot())

	assert.True(t, strings.HasPrefix(out, "# BTCUSDT zone report"))
	assert.Contains(t, out, "- regime W1/D1: range / trend_up")
	assert.Contains(t, out, "- W1 range: 80 .. 120 (eq 100)")
	assert.Contains(t, out, "- ATR D1: 2.5, H4: n/a")
	assert.Contains(t, out, "broke up")
	assert.Contains(t, out, "| structural | 94 .. 95 | 93 .. 96 | 4 | bounce | 4 | 75% | 0% | 3d ago |")
	assert.Contains(t, out, "## Working zones")
	assert.Contains(t, out, "fingerprint: cafe01")
}

func TestRenderEmptySides(t *testing.T) {
	s := sampleSnapshot()
	s.Supports = nil
	s.WorkingZones = nil
	out := NewRenderer().Render(s)

	assert.Contains(t, out, "## Supports\n\nnone\n")
	assert.Contains(t, out, "## Resistances\n\nnone\n")
	assert.NotContains(t, out, "## Working zones")
}

func TestNumberFormatting(t *testing.T) {
	assert.Equal(t, "100", fnum(100))
	assert.Equal(t, "93.3333", fnum(93.3333))
	assert.Equal(t, "0.5", fnum(0.5))
	assert.Equal(t, "n/a", fptr(nil))

	zero := 0
	assert.Equal(t, "never", daysAgo(nil))
	assert.Equal(t, "today", daysAgo(&zero))
}
