package engine

import (
	"sort"

	"StructSnap/internal/domain/models"
)

// SelectZones splits zones into supports strictly below price and resistances
// strictly above, orders each side nearest-first and keeps the top perSide.
// Straddling cores were already split at build time, so a zone whose core
// still contains price is skipped here.
func SelectZones(zones []models.Zone, price float64, perSide int) (supports, resistances []models.Zone) {
	for _, z := range zones {
		switch {
		case z.Core.High < price:
			supports = append(supports, z)
		case z.Core.Low > price:
			resistances = append(resistances, z)
		}
	}
	sortByProximity(supports, price)
	sortByProximity(resistances, price)
	if len(supports) > perSide {
		supports = supports[:perSide]
	}
	if len(resistances) > perSide {
		resistances = resistances[:perSide]
	}
	return supports, resistances
}

// sortByProximity orders nearest-first; ties prefer the coarser tier, then the
// stronger zone, then the lower core for a stable total order.
func sortByProximity(zones []models.Zone, price float64) {
	sort.SliceStable(zones, func(i, j int) bool {
		di, dj := zones[i].Distance(price), zones[j].Distance(price)
		if di != dj {
			return di < dj
		}
		if zones[i].Tier.Rank() != zones[j].Tier.Rank() {
			return zones[i].Tier.Rank() > zones[j].Tier.Rank()
		}
		if zones[i].Strength != zones[j].Strength {
			return zones[i].Strength > zones[j].Strength
		}
		return zones[i].Core.Low < zones[j].Core.Low
	})
}

// SortZonesCanonical orders the full zone list deterministically for payload
// serialization: coarser tiers first, supports before resistances, then by
// core position.
func SortZonesCanonical(zones []models.Zone) {
	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].Tier.Rank() != zones[j].Tier.Rank() {
			return zones[i].Tier.Rank() > zones[j].Tier.Rank()
		}
		if zones[i].Side != zones[j].Side {
			return zones[i].Side == models.SideSupport
		}
		if zones[i].Core.Low != zones[j].Core.Low {
			return zones[i].Core.Low < zones[j].Core.Low
		}
		return zones[i].Core.High < zones[j].Core.High
	})
}

// BuildWorkingZones derives short-horizon trading bands from the selected
// zones, re-buffered with the 4h ATR. Emitted only in the full variant.
func BuildWorkingZones(supports, resistances []models.Zone, atrH4 *float64, price float64, p Params) []models.WorkingZone {
	pad := p.WorkK * deref(atrH4)
	if atrH4 == nil {
		pad = p.FallbackBufferFrac * price
	}
	out := make([]models.WorkingZone, 0, len(supports)+len(resistances))
	for _, z := range supports {
		out = append(out, workingZone(z, pad))
	}
	for _, z := range resistances {
		out = append(out, workingZone(z, pad))
	}
	return out
}

func workingZone(z models.Zone, pad float64) models.WorkingZone {
	center := (z.Core.Low + z.Core.High) / 2
	return models.WorkingZone{
		Side:     z.Side,
		FromTier: z.Tier,
		Center:   center,
		Band:     models.Interval{Low: center - pad, High: center + pad},
		Strength: z.Strength,
	}
}
