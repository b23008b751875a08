// Package models contains domain types for the casekeeper engine.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// EntityType tags the kind of record an EntityRef points at.
// Stored as a short string in relationship rows (from_type / to_type).
type EntityType string

// Known entity types. Relationship rows may carry other tags written by newer
// versions of the engine; those are preserved and rendered generically.
const (
	EntityTypeCase           EntityType = "case"
	EntityTypeActivity       EntityType = "activity"
	EntityTypeReport         EntityType = "report"
	EntityTypeLocation       EntityType = "location"
	EntityTypeWitnessAccount EntityType = "witness_account"
	EntityTypeEvidence       EntityType = "evidence"
)

// KnownEntityTypes lists every entity type the engine can resolve, in display order.
var KnownEntityTypes = []EntityType{
	EntityTypeCase,
	EntityTypeActivity,
	EntityTypeReport,
	EntityTypeLocation,
	EntityTypeWitnessAccount,
	EntityTypeEvidence,
}

var entityTypeDisplayNames = map[EntityType]string{
	EntityTypeCase:           "Case",
	EntityTypeActivity:       "Activity",
	EntityTypeReport:         "Report",
	EntityTypeLocation:       "Location",
	EntityTypeWitnessAccount: "Witness Account",
	EntityTypeEvidence:       "Evidence",
}

// ErrEmptyEntityType is returned when parsing a blank entity type tag.
var ErrEmptyEntityType = errors.New("entity type is required")

// String returns the stored tag.
func (t EntityType) String() string {
	return string(t)
}

// IsKnown returns true if the type is one of KnownEntityTypes.
func (t EntityType) IsKnown() bool {
	_, ok := entityTypeDisplayNames[t]
	return ok
}

// DisplayName returns the human name of the type ("Witness Account").
// Unknown types are returned as their raw tag.
func (t EntityType) DisplayName() string {
	if name, ok := entityTypeDisplayNames[t]; ok {
		return name
	}
	return string(t)
}

// ParseEntityType normalizes a type tag. Unknown but non-empty tags are accepted.
func ParseEntityType(s string) (EntityType, error) {
	tag := strings.ToLower(strings.TrimSpace(s))
	if tag == "" {
		return "", ErrEmptyEntityType
	}
	return EntityType(tag), nil
}

// EntityRef points at a record owned by another subsystem.
type EntityRef struct {
	Type EntityType `json:"type"`
	ID   int64      `json:"id"`
}

// NewEntityRef is a convenience constructor.
func NewEntityRef(t EntityType, id int64) EntityRef {
	return EntityRef{Type: t, ID: id}
}

// IsZero reports whether the ref is missing its type or id.
func (r EntityRef) IsZero() bool {
	return r.Type == "" || r.ID <= 0
}

// String renders the ref as "type:id".
func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}
