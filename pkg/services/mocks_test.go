package services

import (
	"context"
	"sync"
	"time"

	"github.com/spectral-records/casekeeper/pkg/models"
)

// ============================================================================
// Mock Implementations for case record repositories
// ============================================================================

type mockCaseRepo struct {
	cases map[int64]*models.Case
	err   error
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id int64) (*models.Case, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cases[id], nil
}

// inflightTracker records the peak number of overlapping repository calls.
type inflightTracker struct {
	mu      sync.Mutex
	current int
	peak    int
}

func (t *inflightTracker) enter() func() {
	if t == nil {
		return func() {}
	}
	t.mu.Lock()
	t.current++
	t.peak = max(t.peak, t.current)
	t.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	return func() {
		t.mu.Lock()
		t.current--
		t.mu.Unlock()
	}
}

func (t *inflightTracker) Peak() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}

type mockClientRepo struct {
	clients  map[int64]*models.Client
	err      error
	calls    int
	inflight *inflightTracker
	mu       sync.Mutex
}

func (m *mockClientRepo) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	defer m.inflight.enter()()
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.clients[id], nil
}

type mockWitnessRepo struct {
	accounts  []*models.WitnessAccount
	err       error
	calls     int
	lastLimit int
	inflight  *inflightTracker
	mu        sync.Mutex
}

func (m *mockWitnessRepo) GetByID(ctx context.Context, id int64) (*models.WitnessAccount, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, wa := range m.accounts {
		if wa.ID == id {
			return wa, nil
		}
	}
	return nil, nil
}

func (m *mockWitnessRepo) ListByCase(ctx context.Context, caseID int64, limit int) ([]*models.WitnessAccount, error) {
	defer m.inflight.enter()()
	m.mu.Lock()
	m.calls++
	m.lastLimit = limit
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	out := make([]*models.WitnessAccount, 0)
	for _, wa := range m.accounts {
		if wa.CaseID != caseID {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, wa)
	}
	return out, nil
}

type mockReportRepo struct {
	reports map[int64]*models.Report
	err     error
}

func (m *mockReportRepo) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reports[id], nil
}

type mockLocationRepo struct {
	locations map[int64]*models.Location
	err       error
}

func (m *mockLocationRepo) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.locations[id], nil
}

// ============================================================================
// Mock Implementations for relationship repositories
// ============================================================================

type mockEdgeRepo struct {
	edges     []*models.RelationshipEdge
	nextID    int64
	createErr error
	listErr   error
	deleteErr error
}

func (m *mockEdgeRepo) Create(ctx context.Context, edge *models.RelationshipEdge) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	edge.ID = m.nextID
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now()
	}
	m.edges = append(m.edges, edge)
	return nil
}

func (m *mockEdgeRepo) GetByID(ctx context.Context, id int64) (*models.RelationshipEdge, error) {
	for _, e := range m.edges {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

// ListTouching returns matches newest-inserted first.
func (m *mockEdgeRepo) ListTouching(ctx context.Context, ref models.EntityRef) ([]*models.RelationshipEdge, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.RelationshipEdge, 0)
	for i := len(m.edges) - 1; i >= 0; i-- {
		if m.edges[i].Touches(ref) {
			out = append(out, m.edges[i])
		}
	}
	return out, nil
}

func (m *mockEdgeRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	for i, e := range m.edges {
		if e.ID == id {
			m.edges = append(m.edges[:i], m.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type mockRelationshipTypeRepo struct {
	types []*models.RelationshipType
	err   error
}

func (m *mockRelationshipTypeRepo) List(ctx context.Context) ([]*models.RelationshipType, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.types, nil
}

func defaultRelationshipTypes() *mockRelationshipTypeRepo {
	return &mockRelationshipTypeRepo{types: []*models.RelationshipType{
		{Key: "related_to", Label: "Related to"},
		{Key: "witnessed_at", Label: "Witnessed at"},
	}}
}

func int64Ptr(v int64) *int64 { return &v }
