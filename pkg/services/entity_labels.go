package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/metrics"
	"github.com/spectral-records/casekeeper/pkg/models"
	"github.com/spectral-records/casekeeper/pkg/repositories"
)

// LabelResolver looks up the natural title of one record of a given type.
// found is false when the record does not exist; err is reserved for infrastructure failures.
type LabelResolver interface {
	ResolveLabel(ctx context.Context, id int64) (label string, found bool, err error)
}

// LabelResolverFunc adapts a function to LabelResolver.
type LabelResolverFunc func(ctx context.Context, id int64) (string, bool, error)

// ResolveLabel calls f.
func (f LabelResolverFunc) ResolveLabel(ctx context.Context, id int64) (string, bool, error) {
	return f(ctx, id)
}

// EntityLabelRegistry renders any EntityRef as a human-readable label.
// Label never fails: missing records and lookup errors degrade to a placeholder.
type EntityLabelRegistry interface {
	// Register binds a resolver to a type, replacing any previous one.
	// Registration happens during startup, before the registry is shared.
	Register(t models.EntityType, r LabelResolver)
	Label(ctx context.Context, ref models.EntityRef) string
}

type entityLabelRegistry struct {
	resolvers map[models.EntityType]LabelResolver
	logger    *zap.Logger
}

// NewEntityLabelRegistry creates an empty registry.
func NewEntityLabelRegistry(logger *zap.Logger) EntityLabelRegistry {
	return &entityLabelRegistry{
		resolvers: make(map[models.EntityType]LabelResolver),
		logger:    logger.Named("entity-labels"),
	}
}

var _ EntityLabelRegistry = (*entityLabelRegistry)(nil)

func (r *entityLabelRegistry) Register(t models.EntityType, resolver LabelResolver) {
	r.resolvers[t] = resolver
}

func (r *entityLabelRegistry) Label(ctx context.Context, ref models.EntityRef) string {
	resolver, ok := r.resolvers[ref.Type]
	if !ok {
		metrics.LabelFallbacks.WithLabelValues(string(ref.Type), metrics.LabelFallbackUnresolved).Inc()
		return fmt.Sprintf("%s #%d", ref.Type, ref.ID)
	}

	label, found, err := resolver.ResolveLabel(ctx, ref.ID)
	if err != nil {
		r.logger.Warn("Failed to resolve entity label",
			zap.String("entity_type", string(ref.Type)),
			zap.Int64("entity_id", ref.ID),
			zap.Error(err))
		metrics.LabelFallbacks.WithLabelValues(string(ref.Type), metrics.LabelFallbackError).Inc()
		return unknownLabel(ref.Type)
	}
	if !found {
		metrics.LabelFallbacks.WithLabelValues(string(ref.Type), metrics.LabelFallbackMissing).Inc()
		return unknownLabel(ref.Type)
	}

	if label = strings.TrimSpace(label); label == "" {
		metrics.LabelFallbacks.WithLabelValues(string(ref.Type), metrics.LabelFallbackEmpty).Inc()
		return fmt.Sprintf("%s #%d", ref.Type.DisplayName(), ref.ID)
	}
	return label
}

func unknownLabel(t models.EntityType) string {
	return "Unknown " + t.DisplayName()
}

// RecordStores are the record repositories labels and case ownership resolve against.
type RecordStores struct {
	Cases           repositories.CaseRepository
	Activities      repositories.ActivityRepository
	Reports         repositories.ReportRepository
	Locations       repositories.LocationRepository
	WitnessAccounts repositories.WitnessAccountRepository
	Evidence        repositories.EvidenceRepository
}

// NewDefaultEntityLabelRegistry registers every known entity type against its record repository.
// Nil stores are skipped, leaving that type to the unregistered fallback.
func NewDefaultEntityLabelRegistry(stores RecordStores, logger *zap.Logger) EntityLabelRegistry {
	registry := NewEntityLabelRegistry(logger)

	if stores.Cases != nil {
		registry.Register(models.EntityTypeCase, resolveWith(stores.Cases.GetByID, func(c *models.Case) string { return c.Title }))
	}
	if stores.Activities != nil {
		registry.Register(models.EntityTypeActivity, resolveWith(stores.Activities.GetByID, func(a *models.Activity) string { return a.Title }))
	}
	if stores.Reports != nil {
		registry.Register(models.EntityTypeReport, resolveWith(stores.Reports.GetByID, func(r *models.Report) string { return r.Title }))
	}
	if stores.Locations != nil {
		registry.Register(models.EntityTypeLocation, resolveWith(stores.Locations.GetByID, func(l *models.Location) string { return l.Name }))
	}
	if stores.WitnessAccounts != nil {
		registry.Register(models.EntityTypeWitnessAccount, resolveWith(stores.WitnessAccounts.GetByID, func(w *models.WitnessAccount) string { return w.DisplayName }))
	}
	if stores.Evidence != nil {
		registry.Register(models.EntityTypeEvidence, resolveWith(stores.Evidence.GetByID, func(e *models.Evidence) string { return e.Title }))
	}

	return registry
}

// resolveWith builds a resolver from a repository lookup that returns nil for missing rows.
func resolveWith[T any](get func(context.Context, int64) (*T, error), title func(*T) string) LabelResolver {
	return LabelResolverFunc(func(ctx context.Context, id int64) (string, bool, error) {
		record, err := get(ctx, id)
		if err != nil {
			return "", false, err
		}
		if record == nil {
			return "", false, nil
		}
		return title(record), true, nil
	})
}
