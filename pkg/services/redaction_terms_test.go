package services

import (
	"context"
	"errors"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/database"
	"github.com/spectral-records/casekeeper/pkg/models"
)

type collectorFixture struct {
	cases     *mockCaseRepo
	clients   *mockClientRepo
	witnesses *mockWitnessRepo
}

func newCollectorFixture(sanitize bool) *collectorFixture {
	return &collectorFixture{
		cases: &mockCaseRepo{cases: map[int64]*models.Case{
			5: {
				ID:                5,
				Title:             "Blackwood Manor",
				ClientID:          int64Ptr(10),
				SanitizeForPublic: sanitize,
				LocationName:      "Blackwood Manor",
				LocationAddress:   "1 Manor Lane",
				LocationCity:      "Salem",
			},
			6: {ID: 6, Title: "No client"},
		}},
		clients: &mockClientRepo{clients: map[int64]*models.Client{
			10: {ID: 10, FirstName: "Ann", LastName: "Lee", Address: "12 Hollow Road", Email: "ann@example.com", Phone: "555-0100"},
		}},
		witnesses: &mockWitnessRepo{accounts: []*models.WitnessAccount{
			{ID: 1, CaseID: 5, DisplayName: "Bob  Smith", Address: "3 Elm St", Email: "bob@example.com", Phone: "555-0111", IncidentLocation: "Cellar"},
			{ID: 2, CaseID: 5, DisplayName: "   "},
			{ID: 3, CaseID: 7, DisplayName: "Other Case"},
		}},
	}
}

func (f *collectorFixture) collector(settings models.RedactionSettings) RedactionTermCollector {
	return NewRedactionTermCollector(f.cases, f.clients, f.witnesses, settings, zap.NewNop())
}

func TestRedactionTermCollector_ClientNamesOnly(t *testing.T) {
	f := newCollectorFixture(false)

	terms, err := f.collector(models.RedactionSettings{}).Collect(context.Background(), 5)
	require.NoError(t, err)

	assert.True(t, terms.Equal(mapset.NewSet("Ann", "Lee", "Ann Lee")), "got %v", terms.ToSlice())
	assert.Equal(t, 0, f.witnesses.calls, "witnesses are not read when names are not redacted")
}

func TestRedactionTermCollector_MissingCase(t *testing.T) {
	f := newCollectorFixture(false)

	terms, err := f.collector(models.RedactionSettings{RedactWitnessNames: true}).Collect(context.Background(), 404)
	require.NoError(t, err)
	assert.Equal(t, 0, terms.Cardinality())
	assert.Equal(t, 0, f.clients.calls)
}

func TestRedactionTermCollector_NoClient(t *testing.T) {
	f := newCollectorFixture(false)

	terms, err := f.collector(models.RedactionSettings{}).Collect(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, 0, terms.Cardinality())
	assert.Equal(t, 0, f.clients.calls)
}

func TestRedactionTermCollector_ClientRecordGone(t *testing.T) {
	f := newCollectorFixture(false)
	f.clients.clients = map[int64]*models.Client{}

	terms, err := f.collector(models.RedactionSettings{}).Collect(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, terms.Cardinality())
}

func TestRedactionTermCollector_WitnessNames(t *testing.T) {
	f := newCollectorFixture(false)

	terms, err := f.collector(models.RedactionSettings{RedactWitnessNames: true}).Collect(context.Background(), 5)
	require.NoError(t, err)

	want := mapset.NewSet("Ann", "Lee", "Ann Lee", "Bob  Smith", "Bob", "Smith")
	assert.True(t, terms.Equal(want), "got %v", terms.ToSlice())
	assert.False(t, terms.Contains("Cellar"), "contact details need the public flag")
	assert.Equal(t, models.DefaultWitnessFetchLimit, f.witnesses.lastLimit)
}

func TestRedactionTermCollector_WitnessFetchLimit(t *testing.T) {
	f := newCollectorFixture(false)

	terms, err := f.collector(models.RedactionSettings{RedactWitnessNames: true, WitnessFetchLimit: 1}).Collect(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 1, f.witnesses.lastLimit)
	assert.True(t, terms.Contains("Bob"))
}

func TestRedactionTermCollector_SanitizeForPublic(t *testing.T) {
	f := newCollectorFixture(true)

	// Public flag pulls witnesses in even with RedactWitnessNames off.
	terms, err := f.collector(models.RedactionSettings{}).Collect(context.Background(), 5)
	require.NoError(t, err)

	want := mapset.NewSet(
		"Ann", "Lee", "Ann Lee", "12 Hollow Road", "ann@example.com", "555-0100",
		"Bob  Smith", "Bob", "Smith", "3 Elm St", "bob@example.com", "555-0111", "Cellar",
		"Blackwood Manor", "1 Manor Lane", "Salem",
	)
	assert.True(t, terms.Equal(want), "got %v", terms.ToSlice())
}

func TestRedactionTermCollector_Errors(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("case lookup", func(t *testing.T) {
		f := newCollectorFixture(false)
		f.cases.err = boom
		_, err := f.collector(models.RedactionSettings{}).Collect(context.Background(), 5)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("client lookup", func(t *testing.T) {
		f := newCollectorFixture(false)
		f.clients.err = boom
		_, err := f.collector(models.RedactionSettings{}).Collect(context.Background(), 5)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("witness list", func(t *testing.T) {
		f := newCollectorFixture(false)
		f.witnesses.err = boom
		_, err := f.collector(models.RedactionSettings{RedactWitnessNames: true}).Collect(context.Background(), 5)
		assert.ErrorIs(t, err, boom)
	})
}

func TestCollectAndRedact_EndToEnd(t *testing.T) {
	f := newCollectorFixture(false)
	settings := models.RedactionSettings{}
	engine := NewRedactionEngine(settings)

	terms, err := f.collector(settings).Collect(context.Background(), 5)
	require.NoError(t, err)

	text := "Ann Lee reported a cold spot near the stairs."
	assert.Equal(t, "[REDACTED] reported a cold spot near the stairs.", engine.Redact(text, terms, false))
	assert.Equal(t, text, engine.Redact(text, terms, true))
}

type stubQuerier struct{ database.Querier }

func TestRedactionTermCollector_SingleConnectionScopeSerialises(t *testing.T) {
	f := newCollectorFixture(true)
	tracker := &inflightTracker{}
	f.clients.inflight = tracker
	f.witnesses.inflight = tracker

	ctx := database.SetScope(context.Background(), database.NewScope(stubQuerier{}, func() {}))

	terms, err := f.collector(models.RedactionSettings{RedactWitnessNames: true}).Collect(ctx, 5)
	require.NoError(t, err)
	assert.True(t, terms.Contains("Ann Lee", "Bob", "Smith"))
	assert.Equal(t, 1, f.clients.calls)
	assert.Equal(t, 1, f.witnesses.calls)
	assert.Equal(t, 1, tracker.Peak(), "reads must not overlap on a pinned connection")
}

func TestRedactionTermCollector_PoolScopeRunsConcurrently(t *testing.T) {
	f := newCollectorFixture(true)
	tracker := &inflightTracker{}
	f.clients.inflight = tracker
	f.witnesses.inflight = tracker

	ctx := database.SetScope(context.Background(), database.NewScope(stubQuerier{}, nil))

	_, err := f.collector(models.RedactionSettings{RedactWitnessNames: true}).Collect(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, tracker.Peak())
}
