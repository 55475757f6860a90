package repository

import "StructSnap/internal/domain/models"

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf models.Timeframe) bool {
	switch tf {
	case models.TFH1, models.TFH4, models.TFD1, models.TFW1:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() models.Timeframe { return models.TFH4 }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) models.Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := models.Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// NormalizeVariant converts raw string to a snapshot variant (default swing).
func NormalizeVariant(s string) models.Variant {
	if models.Variant(s) == models.VariantFull {
		return models.VariantFull
	}
	return models.VariantSwing
}
