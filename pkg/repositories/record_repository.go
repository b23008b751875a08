package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spectral-records/casekeeper/pkg/database"
	"github.com/spectral-records/casekeeper/pkg/models"
)

// ActivityRepository reads logged investigation steps.
type ActivityRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
}

// ReportRepository reads case reports.
type ReportRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Report, error)
}

// LocationRepository reads named locations.
type LocationRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Location, error)
}

// EvidenceRepository reads catalogued evidence.
type EvidenceRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Evidence, error)
}

type recordRepository struct{}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository() ActivityRepository { return &activityRepository{} }

// NewReportRepository creates a new ReportRepository.
func NewReportRepository() ReportRepository { return &reportRepository{} }

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository() LocationRepository { return &locationRepository{} }

// NewEvidenceRepository creates a new EvidenceRepository.
func NewEvidenceRepository() EvidenceRepository { return &evidenceRepository{} }

type (
	activityRepository struct{ recordRepository }
	reportRepository   struct{ recordRepository }
	locationRepository struct{ recordRepository }
	evidenceRepository struct{ recordRepository }
)

var (
	_ ActivityRepository = (*activityRepository)(nil)
	_ ReportRepository   = (*reportRepository)(nil)
	_ LocationRepository = (*locationRepository)(nil)
	_ EvidenceRepository = (*evidenceRepository)(nil)
)

// getOne runs a single-row lookup. Returns false when no row matched.
func (recordRepository) getOne(ctx context.Context, what, query string, id int64, dest ...any) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, fmt.Errorf("no database scope in context")
	}

	if err := scope.Conn.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return true, nil
}

func (r *activityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	var a models.Activity
	found, err := r.getOne(ctx, "activity",
		`SELECT id, case_id, title FROM case_activities WHERE id = $1`, id,
		&a.ID, &a.CaseID, &a.Title)
	if err != nil || !found {
		return nil, err
	}
	return &a, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	var rep models.Report
	found, err := r.getOne(ctx, "report",
		`SELECT id, case_id, title, body, created_at FROM case_reports WHERE id = $1`, id,
		&rep.ID, &rep.CaseID, &rep.Title, &rep.Body, &rep.CreatedAt)
	if err != nil || !found {
		return nil, err
	}
	return &rep, nil
}

func (r *locationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	var loc models.Location
	found, err := r.getOne(ctx, "location",
		`SELECT id, name, city FROM case_locations WHERE id = $1`, id,
		&loc.ID, &loc.Name, &loc.City)
	if err != nil || !found {
		return nil, err
	}
	return &loc, nil
}

func (r *evidenceRepository) GetByID(ctx context.Context, id int64) (*models.Evidence, error) {
	var ev models.Evidence
	found, err := r.getOne(ctx, "evidence",
		`SELECT id, case_id, title FROM case_evidence WHERE id = $1`, id,
		&ev.ID, &ev.CaseID, &ev.Title)
	if err != nil || !found {
		return nil, err
	}
	return &ev, nil
}
