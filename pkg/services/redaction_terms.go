package services

import (
	"context"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spectral-records/casekeeper/pkg/database"
	"github.com/spectral-records/casekeeper/pkg/metrics"
	"github.com/spectral-records/casekeeper/pkg/models"
	"github.com/spectral-records/casekeeper/pkg/repositories"
)

// RedactionTermCollector derives the sensitive strings of one case from its
// client and witness records. Terms are recomputed on every call.
type RedactionTermCollector interface {
	// Collect returns the case's redaction terms. A missing case yields an empty set.
	// Client and witness reads run concurrently unless ctx carries a single-connection scope.
	Collect(ctx context.Context, caseID int64) (mapset.Set[string], error)
}

type redactionTermCollector struct {
	caseRepo    repositories.CaseRepository
	clientRepo  repositories.ClientRepository
	witnessRepo repositories.WitnessAccountRepository
	settings    models.RedactionSettings
	logger      *zap.Logger
}

// NewRedactionTermCollector creates a new RedactionTermCollector.
func NewRedactionTermCollector(
	caseRepo repositories.CaseRepository,
	clientRepo repositories.ClientRepository,
	witnessRepo repositories.WitnessAccountRepository,
	settings models.RedactionSettings,
	logger *zap.Logger,
) RedactionTermCollector {
	return &redactionTermCollector{
		caseRepo:    caseRepo,
		clientRepo:  clientRepo,
		witnessRepo: witnessRepo,
		settings:    settings.Normalize(),
		logger:      logger.Named("redaction-terms"),
	}
}

var _ RedactionTermCollector = (*redactionTermCollector)(nil)

func (c *redactionTermCollector) Collect(ctx context.Context, caseID int64) (mapset.Set[string], error) {
	terms := mapset.NewSet[string]()

	caseRecord, err := c.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case %d: %w", caseID, err)
	}
	if caseRecord == nil {
		c.logger.Debug("Case not found, no redaction terms", zap.Int64("case_id", caseID))
		return terms, nil
	}

	public := caseRecord.SanitizeForPublic

	// Client and witness reads are independent; neither needs a consistent snapshot of the other.
	var (
		client    *models.Client
		witnesses []*models.WitnessAccount
	)
	g, gctx := errgroup.WithContext(ctx)
	if database.IsSingleConnection(ctx) {
		// pgx connections reject overlapping queries.
		g.SetLimit(1)
	}

	if caseRecord.ClientID != nil {
		clientID := *caseRecord.ClientID
		g.Go(func() error {
			var err error
			client, err = c.clientRepo.GetByID(gctx, clientID)
			if err != nil {
				return fmt.Errorf("get client %d: %w", clientID, err)
			}
			return nil
		})
	}

	if c.settings.RedactWitnessNames || public {
		g.Go(func() error {
			var err error
			witnesses, err = c.witnessRepo.ListByCase(gctx, caseID, c.settings.WitnessFetchLimit)
			if err != nil {
				return fmt.Errorf("list witness accounts for case %d: %w", caseID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if client != nil {
		addTerms(terms, client.FirstName, client.LastName, client.FullName())
		if public {
			addTerms(terms, client.Address, client.Email, client.Phone)
		}
	}

	for _, w := range witnesses {
		if name := strings.TrimSpace(w.DisplayName); name != "" {
			addTerms(terms, name)
			addTerms(terms, strings.Fields(name)...)
		}
		if public {
			addTerms(terms, w.Address, w.Email, w.Phone, w.IncidentLocation)
		}
	}

	if public {
		addTerms(terms, caseRecord.LocationName, caseRecord.LocationAddress, caseRecord.LocationCity)
	}

	metrics.RedactionTermsCollected.Observe(float64(terms.Cardinality()))
	return terms, nil
}

// addTerms adds each trimmed, non-empty value.
func addTerms(terms mapset.Set[string], values ...string) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			terms.Add(v)
		}
	}
}
