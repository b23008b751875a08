// Package audit provides case audit logging for SIEM consumption.
// It logs link changes and unredacted reads in structured JSON format so a
// case manager can reconstruct who saw or changed what.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spectral-records/casekeeper/pkg/auth"
	"github.com/spectral-records/casekeeper/pkg/middleware"
	"github.com/spectral-records/casekeeper/pkg/models"
)

// CaseEventType categorizes audited case events for filtering and alerting.
type CaseEventType string

const (
	// EventRelationshipCreated is logged when two records are linked.
	EventRelationshipCreated CaseEventType = "relationship_created"
	// EventRelationshipDeleted is logged when a link is removed.
	EventRelationshipDeleted CaseEventType = "relationship_deleted"
	// EventUnredactedRead is logged when a privileged viewer reads case text without redaction.
	EventUnredactedRead CaseEventType = "unredacted_read"
)

// CaseEvent represents an auditable case event.
type CaseEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	EventType CaseEventType `json:"event_type"`
	CaseID    int64         `json:"case_id,omitempty"`
	UserID    string        `json:"user_id,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	Details   any           `json:"details"`
	Severity  string        `json:"severity"` // info, warning
}

// RelationshipDetails describes the edge a link event is about.
type RelationshipDetails struct {
	EdgeID int64  `json:"edge_id"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// CaseAuditor logs case events under the "case_audit" logger namespace.
type CaseAuditor struct {
	logger *zap.Logger
}

// NewCaseAuditor creates a new case auditor with a dedicated logger namespace.
func NewCaseAuditor(logger *zap.Logger) *CaseAuditor {
	return &CaseAuditor{logger: logger.Named("case_audit")}
}

// LogRelationshipCreated records a new link between two records.
func (a *CaseAuditor) LogRelationshipCreated(ctx context.Context, edgeID int64, from, to models.EntityRef, kind string) {
	a.log(ctx, zap.InfoLevel, "Relationship created", CaseEvent{
		EventType: EventRelationshipCreated,
		Details: RelationshipDetails{
			EdgeID: edgeID,
			From:   from.String(),
			To:     to.String(),
			Kind:   kind,
		},
		Severity: "info",
	})
}

// LogRelationshipDeleted records a removed link. Deletes of missing edges are not audited.
func (a *CaseAuditor) LogRelationshipDeleted(ctx context.Context, edgeID int64) {
	a.log(ctx, zap.InfoLevel, "Relationship deleted", CaseEvent{
		EventType: EventRelationshipDeleted,
		Details:   RelationshipDetails{EdgeID: edgeID},
		Severity:  "info",
	})
}

// LogUnredactedRead records a privileged read of case text.
// Logged at WARN so unredacted access stands out in monitoring.
func (a *CaseAuditor) LogUnredactedRead(ctx context.Context, caseID int64, resource string) {
	a.log(ctx, zap.WarnLevel, "Unredacted case read", CaseEvent{
		EventType: EventUnredactedRead,
		CaseID:    caseID,
		Details: map[string]string{
			"resource": resource,
		},
		Severity: "warning",
	})
}

func (a *CaseAuditor) log(ctx context.Context, level zapcore.Level, msg string, event CaseEvent) {
	if a == nil {
		return
	}

	event.Timestamp = time.Now().UTC()
	event.UserID = auth.GetUserIDFromContext(ctx)
	event.RequestID = middleware.GetRequestID(ctx)

	// Marshaling known types should never fail
	eventJSON, _ := json.Marshal(event)

	a.logger.Check(level, msg).Write(
		zap.String("event_json", string(eventJSON)),
		zap.String("event_type", string(event.EventType)),
		zap.Int64("case_id", event.CaseID),
		zap.String("user_id", event.UserID),
		zap.String("request_id", event.RequestID),
		zap.String("severity", event.Severity),
	)
}
