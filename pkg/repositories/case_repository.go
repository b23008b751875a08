package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spectral-records/casekeeper/pkg/database"
	"github.com/spectral-records/casekeeper/pkg/models"
)

// CaseRepository reads case files. Writes are owned by the case CRUD surface.
type CaseRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Case, error)
}

type caseRepository struct{}

// NewCaseRepository creates a new CaseRepository.
func NewCaseRepository() CaseRepository {
	return &caseRepository{}
}

var _ CaseRepository = (*caseRepository)(nil)

func (r *caseRepository) GetByID(ctx context.Context, id int64) (*models.Case, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, title, client_id, sanitize_for_public,
		       location_name, location_address, location_city, created_at
		FROM cases
		WHERE id = $1`

	var c models.Case
	err := scope.Conn.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.ClientID, &c.SanitizeForPublic,
		&c.LocationName, &c.LocationAddress, &c.LocationCity, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	return &c, nil
}

// ClientRepository reads case clients.
type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Client, error)
}

type clientRepository struct{}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository() ClientRepository {
	return &clientRepository{}
}

var _ ClientRepository = (*clientRepository)(nil)

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, first_name, last_name, address, email, phone
		FROM case_clients
		WHERE id = $1`

	var c models.Client
	err := scope.Conn.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Address, &c.Email, &c.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &c, nil
}
