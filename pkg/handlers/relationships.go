package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/auth"
	"github.com/spectral-records/casekeeper/pkg/models"
	"github.com/spectral-records/casekeeper/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// CreateRelationshipRequest is the body of POST /api/relationships.
type CreateRelationshipRequest struct {
	FromType string `json:"from_type"`
	FromID   int64  `json:"from_id"`
	ToType   string `json:"to_type"`
	ToID     int64  `json:"to_id"`
	Kind     string `json:"kind"`
	Notes    string `json:"notes,omitempty"`
}

// CreateRelationshipResponse for POST /api/relationships
type CreateRelationshipResponse struct {
	ID int64 `json:"id"`
}

// DeleteRelationshipResponse for DELETE /api/relationships/{rid}
type DeleteRelationshipResponse struct {
	Deleted bool `json:"deleted"`
}

// RelatedRecordResponse is one neighbour of the viewed record.
type RelatedRecordResponse struct {
	RelationshipID int64  `json:"relationship_id"`
	OtherType      string `json:"other_type"`
	OtherID        int64  `json:"other_id"`
	Label          string `json:"label"`
	Kind           string `json:"kind"`
	KindLabel      string `json:"kind_label"`
	Direction      string `json:"direction"`
	Notes          string `json:"notes,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// RelatedRecordListResponse for GET /api/entities/{type}/{id}/relationships
type RelatedRecordListResponse struct {
	Entity        string                  `json:"entity"`
	Relationships []RelatedRecordResponse `json:"relationships"`
	TotalCount    int                     `json:"total_count"`
}

// RelationshipTypeResponse is one entry of the relationship type taxonomy.
type RelationshipTypeResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ============================================================================
// Handler
// ============================================================================

// RelationshipsHandler handles record-link HTTP requests.
type RelationshipsHandler struct {
	relationshipService services.RelationshipService
	displayService      services.CaseDisplayService
	logger              *zap.Logger
}

// NewRelationshipsHandler creates a new relationships handler.
func NewRelationshipsHandler(
	relationshipService services.RelationshipService,
	displayService services.CaseDisplayService,
	logger *zap.Logger,
) *RelationshipsHandler {
	return &RelationshipsHandler{
		relationshipService: relationshipService,
		displayService:      displayService,
		logger:              logger,
	}
}

// RegisterRoutes registers the relationship handler's routes on the given mux.
func (h *RelationshipsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ScopeMiddleware) {
	mux.HandleFunc("GET /api/relationship-types",
		authMiddleware.RequireAuth(scopeMiddleware(h.ListTypes)))
	mux.HandleFunc("POST /api/relationships",
		authMiddleware.RequireAuth(scopeMiddleware(h.Create)))
	mux.HandleFunc("DELETE /api/relationships/{rid}",
		authMiddleware.RequireAuth(scopeMiddleware(h.Delete)))
	mux.HandleFunc("GET /api/entities/{type}/{id}/relationships",
		authMiddleware.RequireAuth(scopeMiddleware(h.ListForEntity)))
}

// ListTypes handles GET /api/relationship-types
func (h *RelationshipsHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.relationshipService.ListRelationshipTypes(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list_relationship_types_failed", err)
		return
	}

	out := make([]RelationshipTypeResponse, 0, len(types))
	for _, rt := range types {
		out = append(out, RelationshipTypeResponse{Key: rt.Key, Label: rt.Label})
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: out}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/relationships
func (h *RelationshipsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	from := models.NewEntityRef(normalizeEntityType(req.FromType), req.FromID)
	to := models.NewEntityRef(normalizeEntityType(req.ToType), req.ToID)

	id, err := h.relationshipService.Create(r.Context(), from, to, req.Kind, req.Notes)
	if err != nil {
		writeServiceError(w, h.logger, "create_relationship_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: CreateRelationshipResponse{ID: id}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/relationships/{rid}
// Responds 200 whether or not the edge existed; the body says which.
func (h *RelationshipsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseRelationshipID(w, r, h.logger)
	if !ok {
		return
	}

	deleted, err := h.relationshipService.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "delete_relationship_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: DeleteRelationshipResponse{Deleted: deleted}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListForEntity handles GET /api/entities/{type}/{id}/relationships[?case_id=N]
// Labels and notes are redacted for unprivileged viewers against the cases that own
// the record and its neighbours. A case_id naming a different case is rejected with 400.
func (h *RelationshipsHandler) ListForEntity(w http.ResponseWriter, r *http.Request) {
	ref, ok := ParseEntityRef(w, r, h.logger)
	if !ok {
		return
	}

	caseID, ok := parseOptionalQueryID(w, r, "case_id", "invalid_case_id", "Invalid case_id", h.logger)
	if !ok {
		return
	}

	records, err := h.displayService.RelatedRecords(r.Context(), caseID, ref, auth.IsPrivileged(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "list_relationships_failed", err)
		return
	}

	out := make([]RelatedRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRelatedRecordResponse(rec))
	}

	response := RelatedRecordListResponse{
		Entity:        ref.String(),
		Relationships: out,
		TotalCount:    len(out),
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func toRelatedRecordResponse(rec models.RelatedRecord) RelatedRecordResponse {
	resp := RelatedRecordResponse{
		OtherType: string(rec.Other.Type),
		OtherID:   rec.Other.ID,
		Label:     rec.Label,
		KindLabel: rec.KindLabel,
		Direction: rec.Direction,
		Notes:     rec.Notes,
	}
	if rec.Edge != nil {
		resp.RelationshipID = rec.Edge.ID
		resp.Kind = rec.Edge.Kind
		resp.CreatedBy = rec.Edge.CreatedBy
		resp.CreatedAt = rec.Edge.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// normalizeEntityType lowercases a type tag; blank tags stay blank so the
// service reports them as a validation error.
func normalizeEntityType(raw string) models.EntityType {
	t, err := models.ParseEntityType(raw)
	if err != nil {
		return ""
	}
	return t
}
