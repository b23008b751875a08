//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spectral-records/casekeeper/pkg/testhelpers"
)

// caseFixture inserts a case with a client, returning both ids.
func caseFixture(t *testing.T, ctx context.Context, engineDB *testhelpers.EngineDB, sanitize bool) (caseID, clientID int64) {
	t.Helper()

	err := engineDB.DB.QueryRow(ctx, `
		INSERT INTO case_clients (first_name, last_name, address, email, phone)
		VALUES ('Ann', 'Lee', '12 Hollow Road', 'ann@example.com', '555-0100')
		RETURNING id`).Scan(&clientID)
	require.NoError(t, err)

	err = engineDB.DB.QueryRow(ctx, `
		INSERT INTO cases (title, client_id, sanitize_for_public, location_name, location_address, location_city)
		VALUES ('Blackwood Manor', $1, $2, 'Blackwood Manor', '1 Manor Lane', 'Salem')
		RETURNING id`, clientID, sanitize).Scan(&caseID)
	require.NoError(t, err)

	return caseID, clientID
}

func witnessFixture(t *testing.T, ctx context.Context, engineDB *testhelpers.EngineDB, caseID int64, name string) int64 {
	t.Helper()

	var id int64
	err := engineDB.DB.QueryRow(ctx, `
		INSERT INTO case_witness_accounts (case_id, display_name, incident_location, statement)
		VALUES ($1, $2, 'Cellar', 'Heard knocking')
		RETURNING id`, caseID, name).Scan(&id)
	require.NoError(t, err)
	return id
}
