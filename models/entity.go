package models

import "time"

// Entity is a single locally-materialized domain record: a receipt, a team,
// or a user profile. Entities are identified by a stable opaque id and carry
// an arbitrary field map; the only versioning information is UpdatedAt
// (no vector clocks).
type Entity struct {
	// ID is the stable opaque identifier of the record, shared between the
	// local store and the remote system of record.
	ID string `json:"id"`

	// UpdatedAt is the last-modification timestamp used by the conflict
	// resolver (last-writer-wins).
	UpdatedAt time.Time `json:"updated_at"`

	// Fields holds the record's attributes keyed by local field name
	// (e.g. "merchant", "totalAmount").
	Fields map[string]any `json:"fields"`
}

// EntityType names a synchronized collection. One local-store collection and
// one remote endpoint exist per type.
type EntityType string

const (
	EntityTypeReceipt EntityType = "receipts"
	EntityTypeTeam    EntityType = "teams"
	EntityTypeProfile EntityType = "profiles"
)

// EntityTypes lists every synchronized collection in a fixed order. The
// reconciler iterates this slice, so the order also fixes reconciliation
// order within a pass.
func EntityTypes() []EntityType {
	return []EntityType{EntityTypeReceipt, EntityTypeTeam, EntityTypeProfile}
}

// Valid reports whether t names a known collection.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeReceipt, EntityTypeTeam, EntityTypeProfile:
		return true
	}
	return false
}

func (t EntityType) String() string { return string(t) }
