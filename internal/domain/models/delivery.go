package models

// Delivery is one serialized snapshot on its way to the downstream sinks
// (message bus, latest pointer, versioned store).
type Delivery struct {
	RunID       string
	Symbol      string
	Variant     Variant
	Fingerprint string
	Snapshot    *Snapshot
	Payload     []byte
}
