package repositories

import (
	"context"
	"fmt"

	"github.com/spectral-records/casekeeper/pkg/database"
	"github.com/spectral-records/casekeeper/pkg/models"
)

// RelationshipTypeRepository reads the admin-defined relationship type taxonomy.
type RelationshipTypeRepository interface {
	List(ctx context.Context) ([]*models.RelationshipType, error)
}

type relationshipTypeRepository struct{}

// NewRelationshipTypeRepository creates a new RelationshipTypeRepository.
func NewRelationshipTypeRepository() RelationshipTypeRepository {
	return &relationshipTypeRepository{}
}

var _ RelationshipTypeRepository = (*relationshipTypeRepository)(nil)

func (r *relationshipTypeRepository) List(ctx context.Context) ([]*models.RelationshipType, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.Query(ctx, `
		SELECT key, label, created_at
		FROM case_relationship_types
		ORDER BY label, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationship types: %w", err)
	}
	defer rows.Close()

	types := make([]*models.RelationshipType, 0)
	for rows.Next() {
		var rt models.RelationshipType
		if err := rows.Scan(&rt.Key, &rt.Label, &rt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relationship type: %w", err)
		}
		types = append(types, &rt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationship types: %w", err)
	}

	return types, nil
}
