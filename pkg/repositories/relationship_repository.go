package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spectral-records/casekeeper/pkg/database"
	"github.com/spectral-records/casekeeper/pkg/models"
)

// RelationshipRepository provides data access for typed edges between case records.
type RelationshipRepository interface {
	// Create inserts the edge and sets its ID and CreatedAt.
	// No uniqueness is enforced: identical (from, to, kind) edges are independent rows.
	Create(ctx context.Context, edge *models.RelationshipEdge) error
	GetByID(ctx context.Context, id int64) (*models.RelationshipEdge, error)
	// ListTouching returns every edge with ref on either side, newest first.
	ListTouching(ctx context.Context, ref models.EntityRef) ([]*models.RelationshipEdge, error)
	// Delete hard-deletes the edge and reports whether a row existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

type relationshipRepository struct{}

// NewRelationshipRepository creates a new RelationshipRepository.
func NewRelationshipRepository() RelationshipRepository {
	return &relationshipRepository{}
}

var _ RelationshipRepository = (*relationshipRepository)(nil)

const relationshipColumns = `id, from_id, from_type, to_id, to_type, kind, notes, created_by, created_at`

func (r *relationshipRepository) Create(ctx context.Context, edge *models.RelationshipEdge) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO case_relationships (from_id, from_type, to_id, to_type, kind, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := scope.Conn.QueryRow(ctx, query,
		edge.From.ID, string(edge.From.Type), edge.To.ID, string(edge.To.Type),
		edge.Kind, edge.Notes, edge.CreatedBy, edge.CreatedAt,
	).Scan(&edge.ID)
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}

	return nil
}

func (r *relationshipRepository) GetByID(ctx context.Context, id int64) (*models.RelationshipEdge, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + relationshipColumns + ` FROM case_relationships WHERE id = $1`

	edge, err := scanRelationship(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}

	return edge, nil
}

func (r *relationshipRepository) ListTouching(ctx context.Context, ref models.EntityRef) ([]*models.RelationshipEdge, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	// OR across the two endpoint indexes; a self-loop matches both arms but is one row.
	query := `
		SELECT ` + relationshipColumns + `
		FROM case_relationships
		WHERE (from_type = $1 AND from_id = $2)
		   OR (to_type = $1 AND to_id = $2)
		ORDER BY created_at DESC, id DESC`

	rows, err := scope.Conn.Query(ctx, query, string(ref.Type), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	edges := make([]*models.RelationshipEdge, 0)
	for rows.Next() {
		edge, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationships: %w", err)
	}

	return edges, nil
}

func (r *relationshipRepository) Delete(ctx context.Context, id int64) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, fmt.Errorf("no database scope in context")
	}

	tag, err := scope.Conn.Exec(ctx, `DELETE FROM case_relationships WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete relationship: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanRelationship(row pgx.Row) (*models.RelationshipEdge, error) {
	var edge models.RelationshipEdge
	var fromType, toType string

	err := row.Scan(
		&edge.ID, &edge.From.ID, &fromType, &edge.To.ID, &toType,
		&edge.Kind, &edge.Notes, &edge.CreatedBy, &edge.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan relationship: %w", err)
	}

	edge.From.Type = models.EntityType(fromType)
	edge.To.Type = models.EntityType(toType)
	return &edge, nil
}
