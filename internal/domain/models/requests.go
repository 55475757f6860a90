package models

// Requests for the snapshot HTTP endpoints. Defined in domain for consistency and reuse.

type SnapshotRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Variant string `query:"variant" json:"variant" default:"swing" validate:"oneof=swing full"`
}

type ZonesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Side   string `query:"side" json:"side" default:"" validate:"omitempty,oneof=support resistance"`
	Tier   string `query:"tier" json:"tier" default:"" validate:"omitempty,oneof=operational structural macro"`
}

type ReportRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}
