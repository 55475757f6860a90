package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"StructSnap/internal/domain/models"
	"StructSnap/pkg/util"
)

// digestPayload is the canonical serialization the fingerprint covers. It
// deliberately excludes GeneratedAt: two runs over identical candle history
// must produce identical fingerprints no matter when they execute.
type digestPayload struct {
	Symbol       string               `json:"symbol"`
	AsOf         time.Time            `json:"as_of"`
	Price        float64              `json:"price"`
	Range        models.RangeContext  `json:"range"`
	Supports     []models.Zone        `json:"supports"`
	Resistances  []models.Zone        `json:"resistances"`
	AllZones     []models.Zone        `json:"all_zones"`
	WorkingZones []models.WorkingZone `json:"working_zones"`
}

// Fingerprint computes the sha256 digest of a snapshot's deterministic
// content. Zone slices must already be in canonical order.
func Fingerprint(s *models.Snapshot) (string, error) {
	b, err := json.Marshal(digestPayload{
		Symbol:       s.Symbol,
		AsOf:         s.AsOf.UTC(),
		Price:        s.Price,
		Range:        s.Range,
		Supports:     s.Supports,
		Resistances:  s.Resistances,
		AllZones:     s.AllZones,
		WorkingZones: s.WorkingZones,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint marshal: %w", err)
	}
	return util.SHA256Hex(b), nil
}

// ShapeVariant derives the published form of a full snapshot. The swing
// variant drops the extended zone listings and carries its own fingerprint
// over the reduced payload.
func ShapeVariant(full *models.Snapshot, variant models.Variant) (*models.Snapshot, error) {
	out := *full
	if variant == models.VariantSwing {
		out.AllZones = nil
		out.WorkingZones = nil
	}
	fp, err := Fingerprint(&out)
	if err != nil {
		return nil, err
	}
	out.Fingerprint = fp
	return &out, nil
}
