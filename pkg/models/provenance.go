package models

import (
	"context"
	"strings"
)

// ProvenanceContext carries WHO performed an action.
type ProvenanceContext struct {
	// Subject is the authenticated token subject. Identity providers issue UUIDs,
	// "auth0|..." ids and service-account names alike; all are kept verbatim.
	Subject string
}

// Actor returns the value stored in created_by columns.
// Empty when no user is attached.
func (p ProvenanceContext) Actor() string {
	return strings.TrimSpace(p.Subject)
}

type provenanceKey struct{}

// WithProvenance returns a new context with provenance information attached.
func WithProvenance(ctx context.Context, p ProvenanceContext) context.Context {
	return context.WithValue(ctx, provenanceKey{}, p)
}

// WithSubject returns a context whose provenance is the given token subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return WithProvenance(ctx, ProvenanceContext{Subject: subject})
}

// GetProvenance retrieves provenance information from the context.
func GetProvenance(ctx context.Context) (ProvenanceContext, bool) {
	p, ok := ctx.Value(provenanceKey{}).(ProvenanceContext)
	return p, ok
}
