package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/apperrors"
	"github.com/spectral-records/casekeeper/pkg/audit"
	"github.com/spectral-records/casekeeper/pkg/metrics"
	"github.com/spectral-records/casekeeper/pkg/models"
	"github.com/spectral-records/casekeeper/pkg/repositories"
)

// RelationshipService manages typed links between case records.
// Edges are stored directed but every read treats them as undirected.
type RelationshipService interface {
	// Create validates and persists a new edge, returning its id.
	// Endpoints are not checked for existence and duplicates are allowed.
	Create(ctx context.Context, from, to models.EntityRef, kind, notes string) (int64, error)

	// EdgesTouching returns every edge with ref on either side, newest first.
	EdgesTouching(ctx context.Context, ref models.EntityRef) ([]*models.RelationshipEdge, error)

	// Delete removes an edge. Returns false when no such edge existed.
	Delete(ctx context.Context, edgeID int64) (bool, error)

	// RelatedRecords resolves each edge touching ref into its counterpart with labels.
	RelatedRecords(ctx context.Context, ref models.EntityRef) ([]models.RelatedRecord, error)

	// ListRelationshipTypes returns the relationship type taxonomy ordered by label.
	ListRelationshipTypes(ctx context.Context) ([]*models.RelationshipType, error)
}

type relationshipService struct {
	relRepo  repositories.RelationshipRepository
	typeRepo repositories.RelationshipTypeRepository
	labels   EntityLabelRegistry
	auditor  *audit.CaseAuditor
	logger   *zap.Logger
}

// NewRelationshipService creates a new RelationshipService. auditor may be nil.
func NewRelationshipService(
	relRepo repositories.RelationshipRepository,
	typeRepo repositories.RelationshipTypeRepository,
	labels EntityLabelRegistry,
	auditor *audit.CaseAuditor,
	logger *zap.Logger,
) RelationshipService {
	return &relationshipService{
		relRepo:  relRepo,
		typeRepo: typeRepo,
		labels:   labels,
		auditor:  auditor,
		logger:   logger.Named("relationship-service"),
	}
}

var _ RelationshipService = (*relationshipService)(nil)

func (s *relationshipService) Create(ctx context.Context, from, to models.EntityRef, kind, notes string) (int64, error) {
	if from.IsZero() {
		return 0, apperrors.NewValidationError("from", "is required")
	}
	if to.IsZero() {
		return 0, apperrors.NewValidationError("to", "is required")
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return 0, apperrors.NewValidationError("kind", "is required")
	}

	edge := &models.RelationshipEdge{
		From: from,
		To:   to,
		Kind: kind,
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		edge.Notes = &notes
	}
	if prov, ok := models.GetProvenance(ctx); ok {
		edge.CreatedBy = prov.Actor()
	}

	if err := s.relRepo.Create(ctx, edge); err != nil {
		s.logger.Error("Failed to create relationship",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("kind", kind),
			zap.Error(err))
		return 0, fmt.Errorf("create relationship: %w", err)
	}

	metrics.RelationshipsCreated.WithLabelValues(kind).Inc()
	s.auditor.LogRelationshipCreated(ctx, edge.ID, from, to, kind)

	s.logger.Debug("Created relationship",
		zap.Int64("edge_id", edge.ID),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("kind", kind))

	return edge.ID, nil
}

func (s *relationshipService) EdgesTouching(ctx context.Context, ref models.EntityRef) ([]*models.RelationshipEdge, error) {
	edges, err := s.relRepo.ListTouching(ctx, ref)
	if err != nil {
		s.logger.Error("Failed to list relationships",
			zap.String("ref", ref.String()),
			zap.Error(err))
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	return edges, nil
}

func (s *relationshipService) Delete(ctx context.Context, edgeID int64) (bool, error) {
	deleted, err := s.relRepo.Delete(ctx, edgeID)
	if err != nil {
		s.logger.Error("Failed to delete relationship",
			zap.Int64("edge_id", edgeID),
			zap.Error(err))
		return false, fmt.Errorf("delete relationship: %w", err)
	}

	if deleted {
		metrics.RelationshipsDeleted.Inc()
		s.auditor.LogRelationshipDeleted(ctx, edgeID)
	}
	return deleted, nil
}

func (s *relationshipService) RelatedRecords(ctx context.Context, ref models.EntityRef) ([]models.RelatedRecord, error) {
	edges, err := s.EdgesTouching(ctx, ref)
	if err != nil {
		return nil, err
	}

	records := make([]models.RelatedRecord, 0, len(edges))
	if len(edges) == 0 {
		return records, nil
	}

	kindLabels := s.kindLabels(ctx)
	for _, edge := range edges {
		other := edge.Counterpart(ref)

		kindLabel, ok := kindLabels[edge.Kind]
		if !ok {
			kindLabel = edge.Kind
		}

		records = append(records, models.RelatedRecord{
			Edge:      edge,
			Other:     other,
			Label:     s.labels.Label(ctx, other),
			KindLabel: kindLabel,
			Direction: edge.Direction(ref),
			Notes:     edge.NotesText(),
		})
	}

	return records, nil
}

// kindLabels loads the taxonomy as key -> label. A failed load degrades to raw keys.
func (s *relationshipService) kindLabels(ctx context.Context) map[string]string {
	types, err := s.typeRepo.List(ctx)
	if err != nil {
		s.logger.Warn("Failed to load relationship types, showing raw keys", zap.Error(err))
		return nil
	}

	labels := make(map[string]string, len(types))
	for _, rt := range types {
		labels[rt.Key] = rt.Label
	}
	return labels
}

func (s *relationshipService) ListRelationshipTypes(ctx context.Context) ([]*models.RelationshipType, error) {
	types, err := s.typeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list relationship types: %w", err)
	}
	return types, nil
}
