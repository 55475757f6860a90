package usecase

import (
	"fmt"

	"StructSnap/internal/domain/models"
)

// SnapshotValidator is the hard gate before publish. Any violation aborts the
// symbol for this run; the previous snapshot stays live.
type SnapshotValidator struct {
	perSide int
}

func NewSnapshotValidator(perSide int) *SnapshotValidator {
	if perSide <= 0 {
		perSide = 4
	}
	return &SnapshotValidator{perSide: perSide}
}

func (v *SnapshotValidator) Validate(s *models.Snapshot) error {
	if s == nil {
		return fmt.Errorf("nil snapshot: %w", models.ErrValidationFailure)
	}
	if s.Symbol == "" || s.Price <= 0 {
		return fmt.Errorf("snapshot %q price %f: %w", s.Symbol, s.Price, models.ErrValidationFailure)
	}
	if len(s.Supports) > v.perSide || len(s.Resistances) > v.perSide {
		return fmt.Errorf("%s: too many selected zones: %w", s.Symbol, models.ErrValidationFailure)
	}
	if err := v.checkSide(s.Supports, models.SideSupport, s.Price); err != nil {
		return fmt.Errorf("%s supports: %w", s.Symbol, err)
	}
	if err := v.checkSide(s.Resistances, models.SideResistance, s.Price); err != nil {
		return fmt.Errorf("%s resistances: %w", s.Symbol, err)
	}
	for _, z := range s.AllZones {
		if err := checkZone(z); err != nil {
			return fmt.Errorf("%s: %w", s.Symbol, err)
		}
	}
	if s.Fingerprint == "" {
		return fmt.Errorf("%s: empty fingerprint: %w", s.Symbol, models.ErrValidationFailure)
	}
	fp, err := Fingerprint(s)
	if err != nil {
		return err
	}
	if fp != s.Fingerprint {
		return fmt.Errorf("%s: fingerprint mismatch: %w", s.Symbol, models.ErrValidationFailure)
	}
	return nil
}

// checkSide verifies side purity relative to price and the nearest-first
// ordering of the shortlist.
func (v *SnapshotValidator) checkSide(zones []models.Zone, side models.Side, price float64) error {
	prev := -1.0
	for _, z := range zones {
		if z.Side != side {
			return fmt.Errorf("zone on wrong side %s: %w", z.Side, models.ErrValidationFailure)
		}
		if side == models.SideSupport && z.Core.High >= price {
			return fmt.Errorf("support core at/above price: %w", models.ErrValidationFailure)
		}
		if side == models.SideResistance && z.Core.Low <= price {
			return fmt.Errorf("resistance core at/below price: %w", models.ErrValidationFailure)
		}
		if err := checkZone(z); err != nil {
			return err
		}
		d := z.Distance(price)
		if prev >= 0 && d < prev {
			return fmt.Errorf("shortlist not nearest-first: %w", models.ErrValidationFailure)
		}
		prev = d
	}
	return nil
}

func checkZone(z models.Zone) error {
	if !z.Valid() {
		return fmt.Errorf("zone %v invalid: %w", z.Core, models.ErrValidationFailure)
	}
	if z.Strength < 1 || z.Strength > 5 {
		return fmt.Errorf("zone strength %d out of range: %w", z.Strength, models.ErrValidationFailure)
	}
	if z.Stats.ReactionRate < 0 || z.Stats.ReactionRate > 1 ||
		z.Stats.FailureRate < 0 || z.Stats.FailureRate > 1 {
		return fmt.Errorf("zone rates out of range: %w", models.ErrValidationFailure)
	}
	return nil
}
