// Package metrics exposes Prometheus collectors for the relationship graph and redaction pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Relationship graph metrics
	RelationshipsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casekeeper_relationships_created_total",
			Help: "Number of relationship edges created",
		},
		[]string{"kind"},
	)

	RelationshipsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casekeeper_relationships_deleted_total",
		Help: "Number of relationship edges deleted",
	})

	// Label metrics
	LabelFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casekeeper_label_fallbacks_total",
			Help: "Number of entity labels rendered from a fallback instead of the record",
		},
		[]string{"entity_type", "reason"},
	)

	// Redaction metrics
	RedactionTermsCollected = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "casekeeper_redaction_terms_collected",
		Help:    "Number of per-case redaction terms collected",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	RedactionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casekeeper_redactions_total",
			Help: "Number of texts passed through the redaction engine",
		},
		[]string{"outcome"},
	)
)

// Label fallback reasons.
const (
	LabelFallbackMissing    = "missing"
	LabelFallbackError      = "error"
	LabelFallbackEmpty      = "empty"
	LabelFallbackUnresolved = "unregistered"
)

// Redaction outcomes.
const (
	RedactionSkippedPrivileged = "privileged"
	RedactionSkippedNoTerms    = "no_terms"
	RedactionApplied           = "applied"
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
