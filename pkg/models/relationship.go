package models

import "time"

// Relationship directions relative to the record being viewed.
const (
	RelationshipDirectionOutgoing = "outgoing" // viewer is the "from" side
	RelationshipDirectionIncoming = "incoming" // viewer is the "to" side
)

// RelationshipEdge is an asserted, typed association between two records.
// Stored in case_relationships table.
//
// From/To record who initiated the link; reads treat the edge as undirected.
// Edges are never edited in place: corrections are delete + recreate.
type RelationshipEdge struct {
	ID        int64     `json:"id"`
	From      EntityRef `json:"from"`
	To        EntityRef `json:"to"`
	Kind      string    `json:"kind"`            // key into the relationship type taxonomy
	Notes     *string   `json:"notes,omitempty"` // optional free text
	CreatedBy string    `json:"created_by"`      // acting user id
	CreatedAt time.Time `json:"created_at"`
}

// Touches returns true if ref is either endpoint of the edge.
func (e *RelationshipEdge) Touches(ref EntityRef) bool {
	return e.From == ref || e.To == ref
}

// Counterpart returns the endpoint on the other side of the edge from ref.
// For self-loops both sides are ref.
func (e *RelationshipEdge) Counterpart(ref EntityRef) EntityRef {
	if e.From == ref {
		return e.To
	}
	return e.From
}

// Direction reports whether ref initiated the edge (outgoing) or was linked to (incoming).
func (e *RelationshipEdge) Direction(ref EntityRef) string {
	if e.From == ref {
		return RelationshipDirectionOutgoing
	}
	return RelationshipDirectionIncoming
}

// NotesText returns the notes or an empty string.
func (e *RelationshipEdge) NotesText() string {
	if e.Notes == nil {
		return ""
	}
	return *e.Notes
}

// RelationshipType is an admin-defined label for an edge kind ("witnessed_at" -> "Witnessed at").
// Stored in case_relationship_types table.
type RelationshipType struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// RelatedRecord is an edge resolved for display relative to one record.
type RelatedRecord struct {
	Edge      *RelationshipEdge `json:"edge"`
	Other     EntityRef         `json:"other"`
	Label     string            `json:"label"`
	KindLabel string            `json:"kind_label"`
	Direction string            `json:"direction"`
	Notes     string            `json:"notes,omitempty"`
}
