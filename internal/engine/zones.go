package engine

import (
	"sort"

	"StructSnap/internal/domain/models"
)

// BuiltZone is a zone before replay: the geometric shell plus the cluster
// strength the replayer needs for the final 1..5 score.
type BuiltZone struct {
	Zone          models.Zone
	PivotStrength int
}

// BuildResult reports what the builder produced and what it had to discard.
type BuildResult struct {
	Zones   []BuiltZone
	Dropped int
}

// BuildTierZones clusters one tier's pivots into zones relative to the current
// price. atr is the ATR of the tier's timeframe; pass nil when unavailable and
// price-relative fallback widths apply instead.
func BuildTierZones(tier models.Tier, pivots []models.Pivot, atr *float64, price float64, p Params) BuildResult {
	pivots = recentPivots(pivots, p.MaxPivotsPerTF)
	mergeGap := p.MergeK[tier] * deref(atr)
	bufferPad := p.BufferK[tier] * deref(atr)
	if atr == nil {
		mergeGap = p.FallbackMergeFrac * price
		bufferPad = p.FallbackBufferFrac * price
	}
	minSplit := p.MinSplitWidthATRFrac * deref(atr)
	if atr == nil {
		minSplit = p.MinSplitWidthATRFrac * bufferPad
	}

	var res BuildResult
	for _, kind := range []models.PivotKind{models.PivotHigh, models.PivotLow} {
		for _, cl := range clusterPivots(filterKind(pivots, kind), mergeGap) {
			zones, dropped := shapeCluster(tier, cl, bufferPad, minSplit, price)
			res.Zones = append(res.Zones, zones...)
			res.Dropped += dropped
		}
	}
	clipNeighbors(res.Zones)
	return res
}

// recentPivots keeps the max newest pivots by timestamp, so the cap selects
// the same pivots however the input list is ordered.
func recentPivots(pivots []models.Pivot, max int) []models.Pivot {
	if len(pivots) <= max {
		return pivots
	}
	byTime := make([]models.Pivot, len(pivots))
	copy(byTime, pivots)
	sort.SliceStable(byTime, func(i, j int) bool {
		return byTime[i].Timestamp.Before(byTime[j].Timestamp)
	})
	return byTime[len(byTime)-max:]
}

type cluster struct {
	Pivots   []models.Pivot
	Low      float64
	High     float64
	Strength int
}

// clusterPivots runs a single-link sweep over pivots sorted by price: a new
// cluster starts whenever the gap to the previous pivot exceeds mergeGap.
func clusterPivots(pivots []models.Pivot, mergeGap float64) []cluster {
	if len(pivots) == 0 {
		return nil
	}
	sorted := make([]models.Pivot, len(pivots))
	copy(sorted, pivots)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	var clusters []cluster
	cur := cluster{Pivots: sorted[:1], Low: sorted[0].Price, High: sorted[0].Price, Strength: sorted[0].Strength}
	for _, piv := range sorted[1:] {
		if piv.Price-cur.High > mergeGap {
			clusters = append(clusters, cur)
			cur = cluster{Low: piv.Price, High: piv.Price}
		}
		cur.Pivots = append(cur.Pivots, piv)
		if piv.Price > cur.High {
			cur.High = piv.Price
		}
		if piv.Strength > cur.Strength {
			cur.Strength = piv.Strength
		}
	}
	clusters = append(clusters, cur)
	return clusters
}

// shapeCluster turns one cluster into zero, one or two zones. A cluster whose
// core straddles the current price is split at price into a support half and a
// resistance half; halves narrower than minSplit are dropped as degenerate.
func shapeCluster(tier models.Tier, cl cluster, bufferPad, minSplit, price float64) ([]BuiltZone, int) {
	core := models.Interval{Low: cl.Low, High: cl.High}
	switch {
	case core.High < price:
		return []BuiltZone{newBuiltZone(tier, models.SideSupport, core, bufferPad, cl)}, 0
	case core.Low > price:
		return []BuiltZone{newBuiltZone(tier, models.SideResistance, core, bufferPad, cl)}, 0
	}

	var out []BuiltZone
	dropped := 0
	lower := models.Interval{Low: core.Low, High: price}
	if lower.Width() >= minSplit {
		out = append(out, newBuiltZone(tier, models.SideSupport, lower, bufferPad, cl))
	} else {
		dropped++
	}
	upper := models.Interval{Low: price, High: core.High}
	if upper.Width() >= minSplit {
		out = append(out, newBuiltZone(tier, models.SideResistance, upper, bufferPad, cl))
	} else {
		dropped++
	}
	return out, dropped
}

func newBuiltZone(tier models.Tier, side models.Side, core models.Interval, pad float64, cl cluster) BuiltZone {
	return BuiltZone{
		Zone: models.Zone{
			Tier:       tier,
			Side:       side,
			Core:       core,
			Buffer:     models.Interval{Low: core.Low - pad, High: core.High + pad},
			Character:  models.CharacterUnknown,
			PivotCount: len(cl.Pivots),
		},
		PivotStrength: cl.Strength,
	}
}

// clipNeighbors resolves buffer overlap between adjacent zones of the same
// tier and side. The separation line is the midpoint between the facing core
// edges; the weaker zone's buffer retreats to it, equals split the overlap.
// A clipped buffer never retreats past its own core.
func clipNeighbors(zones []BuiltZone) {
	byGroup := map[string][]*BuiltZone{}
	for i := range zones {
		key := string(zones[i].Zone.Tier) + "/" + string(zones[i].Zone.Side)
		byGroup[key] = append(byGroup[key], &zones[i])
	}
	for _, group := range byGroup {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Zone.Core.Low < group[j].Zone.Core.Low
		})
		for i := 0; i+1 < len(group); i++ {
			a, b := group[i], group[i+1]
			if a.Zone.Buffer.High <= b.Zone.Buffer.Low {
				continue
			}
			sep := (a.Zone.Core.High + b.Zone.Core.Low) / 2
			switch {
			case a.PivotStrength > b.PivotStrength:
				raiseBufferLow(&b.Zone, sep)
			case b.PivotStrength > a.PivotStrength:
				lowerBufferHigh(&a.Zone, sep)
			default:
				raiseBufferLow(&b.Zone, sep)
				lowerBufferHigh(&a.Zone, sep)
			}
		}
	}
}

func raiseBufferLow(z *models.Zone, sep float64) {
	limit := sep
	if limit > z.Core.Low {
		limit = z.Core.Low
	}
	if limit > z.Buffer.Low {
		z.Buffer.Low = limit
	}
}

func lowerBufferHigh(z *models.Zone, sep float64) {
	limit := sep
	if limit < z.Core.High {
		limit = z.Core.High
	}
	if limit < z.Buffer.High {
		z.Buffer.High = limit
	}
}

func filterKind(pivots []models.Pivot, kind models.PivotKind) []models.Pivot {
	out := make([]models.Pivot, 0, len(pivots))
	for _, p := range pivots {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
