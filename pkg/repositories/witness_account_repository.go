package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spectral-records/casekeeper/pkg/database"
	"github.com/spectral-records/casekeeper/pkg/models"
)

// WitnessAccountRepository reads witness statements.
type WitnessAccountRepository interface {
	GetByID(ctx context.Context, id int64) (*models.WitnessAccount, error)
	// ListByCase returns at most limit accounts of the case in id order.
	// A non-positive limit returns every account.
	ListByCase(ctx context.Context, caseID int64, limit int) ([]*models.WitnessAccount, error)
}

type witnessAccountRepository struct{}

// NewWitnessAccountRepository creates a new WitnessAccountRepository.
func NewWitnessAccountRepository() WitnessAccountRepository {
	return &witnessAccountRepository{}
}

var _ WitnessAccountRepository = (*witnessAccountRepository)(nil)

const witnessAccountColumns = `id, case_id, display_name, address, email, phone, incident_location, statement, created_at`

func (r *witnessAccountRepository) GetByID(ctx context.Context, id int64) (*models.WitnessAccount, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + witnessAccountColumns + ` FROM case_witness_accounts WHERE id = $1`

	wa, err := scanWitnessAccount(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return wa, nil
}

func (r *witnessAccountRepository) ListByCase(ctx context.Context, caseID int64, limit int) ([]*models.WitnessAccount, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `SELECT ` + witnessAccountColumns + `
		FROM case_witness_accounts
		WHERE case_id = $1
		ORDER BY id`
	args := []any{caseID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query witness accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.WitnessAccount, 0)
	for rows.Next() {
		wa, err := scanWitnessAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, wa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating witness accounts: %w", err)
	}

	return accounts, nil
}

func scanWitnessAccount(row pgx.Row) (*models.WitnessAccount, error) {
	var wa models.WitnessAccount
	err := row.Scan(
		&wa.ID, &wa.CaseID, &wa.DisplayName, &wa.Address, &wa.Email, &wa.Phone,
		&wa.IncidentLocation, &wa.Statement, &wa.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan witness account: %w", err)
	}
	return &wa, nil
}
