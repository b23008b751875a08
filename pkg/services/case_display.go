package services

import (
	"context"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/apperrors"
	"github.com/spectral-records/casekeeper/pkg/audit"
	"github.com/spectral-records/casekeeper/pkg/models"
)

// CaseDisplayService renders case records for a viewer: it collects the case's
// redaction terms and passes every outgoing text field through the engine.
// Privileged viewers skip collection entirely and their reads are audited.
type CaseDisplayService interface {
	// RedactText redacts free text against the case's terms.
	RedactText(ctx context.Context, caseID int64, text string, privileged bool) (string, error)

	// GetReport returns the report with title and body redacted.
	// Returns apperrors.ErrNotFound when the report does not exist in this case.
	GetReport(ctx context.Context, caseID, reportID int64, privileged bool) (*models.Report, error)

	// ListWitnessAccounts returns the case's witness accounts with display fields redacted.
	// Returns apperrors.ErrNotFound when the case does not exist.
	ListWitnessAccounts(ctx context.Context, caseID int64, privileged bool) ([]*models.WitnessAccount, error)

	// RelatedRecords returns the record's graph neighbours with labels and notes redacted.
	// Terms come from the case that owns ref and from the cases owning each counterpart.
	// caseID is optional: it must match ref's owning case, and only adds terms for
	// records that belong to no case (locations).
	RelatedRecords(ctx context.Context, caseID int64, ref models.EntityRef, privileged bool) ([]models.RelatedRecord, error)
}

type caseDisplayService struct {
	stores        RecordStores
	relationships RelationshipService
	collector     RedactionTermCollector
	engine        RedactionEngine
	auditor       *audit.CaseAuditor
	logger        *zap.Logger
}

// NewCaseDisplayService creates a new CaseDisplayService. stores.Cases, stores.Reports and
// stores.WitnessAccounts are required; other nil stores leave their records without an owning case.
// auditor may be nil.
func NewCaseDisplayService(
	stores RecordStores,
	relationships RelationshipService,
	collector RedactionTermCollector,
	engine RedactionEngine,
	auditor *audit.CaseAuditor,
	logger *zap.Logger,
) CaseDisplayService {
	return &caseDisplayService{
		stores:        stores,
		relationships: relationships,
		collector:     collector,
		engine:        engine,
		auditor:       auditor,
		logger:        logger.Named("case-display"),
	}
}

var _ CaseDisplayService = (*caseDisplayService)(nil)

// termsFor collects the case's terms. Privileged viewers need none.
func (s *caseDisplayService) termsFor(ctx context.Context, caseID int64, privileged bool) (mapset.Set[string], error) {
	if privileged || caseID <= 0 {
		return mapset.NewSet[string](), nil
	}

	terms, err := s.collector.Collect(ctx, caseID)
	if err != nil {
		s.logger.Error("Failed to collect redaction terms",
			zap.Int64("case_id", caseID),
			zap.Error(err))
		return nil, fmt.Errorf("collect redaction terms: %w", err)
	}
	return terms, nil
}

func (s *caseDisplayService) RedactText(ctx context.Context, caseID int64, text string, privileged bool) (string, error) {
	terms, err := s.termsFor(ctx, caseID, privileged)
	if err != nil {
		return "", err
	}
	if privileged {
		s.auditor.LogUnredactedRead(ctx, caseID, "text")
	}
	return s.engine.Redact(text, terms, privileged), nil
}

func (s *caseDisplayService) GetReport(ctx context.Context, caseID, reportID int64, privileged bool) (*models.Report, error) {
	report, err := s.stores.Reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if report == nil || report.CaseID != caseID {
		return nil, fmt.Errorf("report %d in case %d: %w", reportID, caseID, apperrors.ErrNotFound)
	}

	terms, err := s.termsFor(ctx, caseID, privileged)
	if err != nil {
		return nil, err
	}
	if privileged {
		s.auditor.LogUnredactedRead(ctx, caseID, models.NewEntityRef(models.EntityTypeReport, reportID).String())
	}

	fields := s.engine.RedactAll([]string{report.Title, report.Body}, terms, privileged)
	out := *report
	out.Title, out.Body = fields[0], fields[1]
	return &out, nil
}

func (s *caseDisplayService) ListWitnessAccounts(ctx context.Context, caseID int64, privileged bool) ([]*models.WitnessAccount, error) {
	caseRecord, err := s.stores.Cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	if caseRecord == nil {
		return nil, fmt.Errorf("case %d: %w", caseID, apperrors.ErrNotFound)
	}

	accounts, err := s.stores.WitnessAccounts.ListByCase(ctx, caseID, 0)
	if err != nil {
		return nil, fmt.Errorf("list witness accounts: %w", err)
	}

	terms, err := s.termsFor(ctx, caseID, privileged)
	if err != nil {
		return nil, err
	}
	if privileged {
		s.auditor.LogUnredactedRead(ctx, caseID, "witness_accounts")
	}

	out := make([]*models.WitnessAccount, 0, len(accounts))
	for _, wa := range accounts {
		fields := s.engine.RedactAll([]string{
			wa.DisplayName, wa.Address, wa.Email, wa.Phone, wa.IncidentLocation, wa.Statement,
		}, terms, privileged)

		redacted := *wa
		redacted.DisplayName = fields[0]
		redacted.Address = fields[1]
		redacted.Email = fields[2]
		redacted.Phone = fields[3]
		redacted.IncidentLocation = fields[4]
		redacted.Statement = fields[5]
		out = append(out, &redacted)
	}
	return out, nil
}

func (s *caseDisplayService) RelatedRecords(ctx context.Context, caseID int64, ref models.EntityRef, privileged bool) ([]models.RelatedRecord, error) {
	owner, err := s.owningCase(ctx, ref)
	if err != nil {
		return nil, err
	}
	if owner > 0 && caseID > 0 && caseID != owner {
		return nil, apperrors.NewValidationError("case_id", fmt.Sprintf("does not match the case of %s", ref))
	}

	records, err := s.relationships.RelatedRecords(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	caseIDs := mapset.NewThreadUnsafeSet[int64]()
	switch {
	case owner > 0:
		caseIDs.Add(owner)
	case caseID > 0:
		caseIDs.Add(caseID)
	}
	owners := map[models.EntityRef]int64{ref: owner}
	for _, rec := range records {
		if _, seen := owners[rec.Other]; seen {
			continue
		}
		other, err := s.owningCase(ctx, rec.Other)
		if err != nil {
			return nil, err
		}
		owners[rec.Other] = other
		if other > 0 {
			caseIDs.Add(other)
		}
	}

	ids := caseIDs.ToSlice()
	slices.Sort(ids)

	if privileged {
		for _, id := range ids {
			s.auditor.LogUnredactedRead(ctx, id, ref.String()+"/relationships")
		}
		return records, nil
	}

	terms := mapset.NewSet[string]()
	for _, id := range ids {
		caseTerms, err := s.termsFor(ctx, id, false)
		if err != nil {
			return nil, err
		}
		terms.Append(caseTerms.ToSlice()...)
	}

	for i := range records {
		fields := s.engine.RedactAll([]string{records[i].Label, records[i].Notes}, terms, false)
		records[i].Label, records[i].Notes = fields[0], fields[1]

		// The embedded edge carries the same notes; never leak the raw copy.
		if edge := records[i].Edge; edge != nil && edge.Notes != nil {
			redacted := *edge
			redacted.Notes = &records[i].Notes
			records[i].Edge = &redacted
		}
	}
	return records, nil
}

// owningCase returns the id of the case ref belongs to, or 0 when it belongs to
// none (locations, unknown types, missing records). Lookup errors are returned so
// a failed read never downgrades redaction.
func (s *caseDisplayService) owningCase(ctx context.Context, ref models.EntityRef) (int64, error) {
	var (
		caseID int64
		err    error
	)
	switch ref.Type {
	case models.EntityTypeCase:
		return ref.ID, nil
	case models.EntityTypeReport:
		caseID, err = caseOf(ctx, s.stores.Reports, ref.ID, func(r *models.Report) int64 { return r.CaseID })
	case models.EntityTypeWitnessAccount:
		caseID, err = caseOf(ctx, s.stores.WitnessAccounts, ref.ID, func(w *models.WitnessAccount) int64 { return w.CaseID })
	case models.EntityTypeActivity:
		caseID, err = caseOf(ctx, s.stores.Activities, ref.ID, func(a *models.Activity) int64 { return a.CaseID })
	case models.EntityTypeEvidence:
		caseID, err = caseOf(ctx, s.stores.Evidence, ref.ID, func(e *models.Evidence) int64 { return e.CaseID })
	}
	if err != nil {
		return 0, fmt.Errorf("resolve case of %s: %w", ref, err)
	}
	return caseID, nil
}

// caseOf reads a record through store and returns its case id; 0 for a nil store or missing row.
func caseOf[T any, S interface {
	GetByID(context.Context, int64) (*T, error)
}](ctx context.Context, store S, id int64, caseID func(*T) int64) (int64, error) {
	if any(store) == nil {
		return 0, nil
	}
	record, err := store.GetByID(ctx, id)
	if err != nil || record == nil {
		return 0, err
	}
	return caseID(record), nil
}
