package usecase

import (
	"fmt"
	"time"

	"StructSnap/internal/domain/models"
	"StructSnap/internal/engine"
	"StructSnap/pkg/logger"
)

// SeriesSet holds one normalized candle series per timeframe.
type SeriesSet map[models.Timeframe]*models.Series

// SnapshotAssembler turns candle history into a full snapshot: pivots, tiered
// zones with replayed stats, range context and the selected zone shortlists.
// Pure computation, no I/O.
type SnapshotAssembler struct {
	params engine.Params
	log    *logger.Logger
}

func NewSnapshotAssembler(params engine.Params, log *logger.Logger) *SnapshotAssembler {
	return &SnapshotAssembler{params: params, log: log}
}

// AssembleInput carries everything one assembly needs. Now becomes
// GeneratedAt and takes no part in any derived value.
type AssembleInput struct {
	Symbol string
	Price  float64
	Series SeriesSet
	Now    time.Time
}

// Assemble builds the full-variant snapshot and reports how many degenerate
// zones it discarded. The 4h series is mandatory; the daily and weekly series
// degrade their tiers and context when missing.
func (a *SnapshotAssembler) Assemble(in AssembleInput) (*models.Snapshot, int, error) {
	h4 := in.Series[models.TFH4]
	if h4 == nil || h4.Len() == 0 {
		return nil, 0, fmt.Errorf("assemble %s: no 4h candles: %w",
			in.Symbol, models.ErrInsufficientHistory)
	}
	if in.Price <= 0 {
		in.Price = h4.LastClose()
	}

	pivots := map[models.Timeframe][]models.Pivot{}
	atrs := map[models.Timeframe]*float64{}
	for tf, s := range in.Series {
		if s == nil || s.Len() == 0 {
			continue
		}
		pivots[tf] = engine.DetectPivots(s, a.params.PivotWindow[tf])
		if v, err := engine.ATR(s.Candles, a.params.ATRPeriod); err == nil {
			atr := v
			atrs[tf] = &atr
		}
	}

	asOf := latestCloseTime(in.Series)
	rangeCtx := engine.BuildRangeContext(
		in.Series[models.TFW1], in.Series[models.TFD1], h4,
		pivots[models.TFW1], pivots[models.TFD1], a.params)

	var all []models.Zone
	dropped := 0
	for _, tier := range []models.Tier{models.TierMacro, models.TierStructural, models.TierOperational} {
		tf := tier.Timeframe()
		src := in.Series[tf]
		if src == nil || src.Len() == 0 {
			continue
		}
		built := engine.BuildTierZones(tier, pivots[tf], atrs[tf], in.Price, a.params)
		dropped += built.Dropped

		replayTF := tier.ReplayTimeframe()
		replaySrc := in.Series[replayTF]
		if replaySrc == nil {
			replaySrc = src
			replayTF = tf
		}
		candles := replaySrc.Tail(a.params.ReplayLookback[replayTF])
		for _, bz := range built.Zones {
			z := engine.FinishZone(bz, candles, asOf, a.params)
			if !z.Valid() {
				dropped++
				continue
			}
			all = append(all, z)
		}
	}
	if dropped > 0 {
		a.log.Debug("dropped degenerate zones",
			logger.String("symbol", in.Symbol), logger.Int("count", dropped))
	}

	engine.SortZonesCanonical(all)
	supports, resistances := engine.SelectZones(all, in.Price, a.params.SelectPerSide)
	working := engine.BuildWorkingZones(supports, resistances, atrs[models.TFH4], in.Price, a.params)

	snap := &models.Snapshot{
		Symbol:       in.Symbol,
		GeneratedAt:  in.Now.UTC(),
		AsOf:         asOf,
		Price:        in.Price,
		Range:        rangeCtx,
		Supports:     supports,
		Resistances:  resistances,
		AllZones:     all,
		WorkingZones: working,
	}
	fp, err := Fingerprint(snap)
	if err != nil {
		return nil, dropped, err
	}
	snap.Fingerprint = fp
	return snap, dropped, nil
}

// latestCloseTime returns the close time of the newest candle across all
// series: the open time of the last bar plus its nominal duration.
func latestCloseTime(set SeriesSet) time.Time {
	var asOf time.Time
	for tf, s := range set {
		if s == nil || s.Len() == 0 {
			continue
		}
		if t := s.LastTimestamp().Add(tf.Duration()); t.After(asOf) {
			asOf = t
		}
	}
	return asOf.UTC()
}
