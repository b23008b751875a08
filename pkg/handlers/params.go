package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/models"
)

// ParseCaseID extracts and validates the case ID from the request path.
// Expects path parameter: cid
func ParseCaseID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "cid", "invalid_case_id", "Invalid case ID", logger)
}

// ParseReportID extracts and validates the report ID from the request path.
// Expects path parameter: rid
func ParseReportID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "rid", "invalid_report_id", "Invalid report ID", logger)
}

// ParseRelationshipID extracts and validates the relationship ID from the request path.
// Expects path parameter: rid
func ParseRelationshipID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (int64, bool) {
	return parseID(w, r, "rid", "invalid_relationship_id", "Invalid relationship ID", logger)
}

// ParseEntityRef extracts the record reference from the request path.
// Expects path parameters: type, id
func ParseEntityRef(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (models.EntityRef, bool) {
	entityType, err := models.ParseEntityType(r.PathValue("type"))
	if err != nil {
		writeParamError(w, "invalid_entity_type", "Invalid entity type", logger)
		return models.EntityRef{}, false
	}

	id, ok := parseID(w, r, "id", "invalid_entity_id", "Invalid entity ID", logger)
	if !ok {
		return models.EntityRef{}, false
	}
	return models.NewEntityRef(entityType, id), true
}

// parseOptionalQueryID reads a positive integer query parameter. Missing means 0.
func parseOptionalQueryID(w http.ResponseWriter, r *http.Request, name, errorCode, errorMessage string, logger *zap.Logger) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeParamError(w, errorCode, errorMessage, logger)
		return 0, false
	}
	return id, true
}

// parseID is the internal helper that does the actual parsing work.
// Record ids are positive integers.
func parseID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(pathParam), 10, 64)
	if err != nil || id <= 0 {
		writeParamError(w, errorCode, errorMessage, logger)
		return 0, false
	}
	return id, true
}

func writeParamError(w http.ResponseWriter, errorCode, errorMessage string, logger *zap.Logger) {
	if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
