package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/auth"
	"github.com/spectral-records/casekeeper/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// ReportResponse is a report as shown to the viewer.
type ReportResponse struct {
	ID        int64  `json:"id"`
	CaseID    int64  `json:"case_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	Redacted  bool   `json:"redacted"`
}

// WitnessAccountResponse is a witness account as shown to the viewer.
type WitnessAccountResponse struct {
	ID               int64  `json:"id"`
	DisplayName      string `json:"display_name"`
	Address          string `json:"address,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	IncidentLocation string `json:"incident_location,omitempty"`
	Statement        string `json:"statement,omitempty"`
}

// WitnessAccountListResponse for GET /api/cases/{cid}/witness-accounts
type WitnessAccountListResponse struct {
	WitnessAccounts []WitnessAccountResponse `json:"witness_accounts"`
	TotalCount      int                      `json:"total_count"`
	Redacted        bool                     `json:"redacted"`
}

// RedactTextRequest is the body of POST /api/cases/{cid}/redact.
type RedactTextRequest struct {
	Text string `json:"text"`
}

// RedactTextResponse for POST /api/cases/{cid}/redact
type RedactTextResponse struct {
	Text     string `json:"text"`
	Redacted bool   `json:"redacted"`
}

// ============================================================================
// Handler
// ============================================================================

// CaseDisplayHandler serves case text with redaction applied for unprivileged viewers.
type CaseDisplayHandler struct {
	displayService services.CaseDisplayService
	logger         *zap.Logger
}

// NewCaseDisplayHandler creates a new case display handler.
func NewCaseDisplayHandler(displayService services.CaseDisplayService, logger *zap.Logger) *CaseDisplayHandler {
	return &CaseDisplayHandler{
		displayService: displayService,
		logger:         logger,
	}
}

// RegisterRoutes registers the case display routes on the given mux.
func (h *CaseDisplayHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scopeMiddleware ScopeMiddleware) {
	mux.HandleFunc("GET /api/cases/{cid}/reports/{rid}",
		authMiddleware.RequireAuth(scopeMiddleware(h.GetReport)))
	mux.HandleFunc("GET /api/cases/{cid}/witness-accounts",
		authMiddleware.RequireAuth(scopeMiddleware(h.ListWitnessAccounts)))
	mux.HandleFunc("POST /api/cases/{cid}/redact",
		authMiddleware.RequireAuth(scopeMiddleware(h.RedactText)))
}

// GetReport handles GET /api/cases/{cid}/reports/{rid}
func (h *CaseDisplayHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	caseID, ok := ParseCaseID(w, r, h.logger)
	if !ok {
		return
	}
	reportID, ok := ParseReportID(w, r, h.logger)
	if !ok {
		return
	}

	privileged := auth.IsPrivileged(r.Context())
	report, err := h.displayService.GetReport(r.Context(), caseID, reportID, privileged)
	if err != nil {
		writeServiceError(w, h.logger, "get_report_failed", err)
		return
	}

	response := ReportResponse{
		ID:        report.ID,
		CaseID:    report.CaseID,
		Title:     report.Title,
		Body:      report.Body,
		CreatedAt: report.CreatedAt.Format(time.RFC3339),
		Redacted:  !privileged,
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListWitnessAccounts handles GET /api/cases/{cid}/witness-accounts
func (h *CaseDisplayHandler) ListWitnessAccounts(w http.ResponseWriter, r *http.Request) {
	caseID, ok := ParseCaseID(w, r, h.logger)
	if !ok {
		return
	}

	privileged := auth.IsPrivileged(r.Context())
	accounts, err := h.displayService.ListWitnessAccounts(r.Context(), caseID, privileged)
	if err != nil {
		writeServiceError(w, h.logger, "list_witness_accounts_failed", err)
		return
	}

	out := make([]WitnessAccountResponse, 0, len(accounts))
	for _, wa := range accounts {
		out = append(out, WitnessAccountResponse{
			ID:               wa.ID,
			DisplayName:      wa.DisplayName,
			Address:          wa.Address,
			Email:            wa.Email,
			Phone:            wa.Phone,
			IncidentLocation: wa.IncidentLocation,
			Statement:        wa.Statement,
		})
	}

	response := WitnessAccountListResponse{
		WitnessAccounts: out,
		TotalCount:      len(out),
		Redacted:        !privileged,
	}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// RedactText handles POST /api/cases/{cid}/redact
// Previews how text would look to the current viewer.
func (h *CaseDisplayHandler) RedactText(w http.ResponseWriter, r *http.Request) {
	caseID, ok := ParseCaseID(w, r, h.logger)
	if !ok {
		return
	}

	var req RedactTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	privileged := auth.IsPrivileged(r.Context())
	text, err := h.displayService.RedactText(r.Context(), caseID, req.Text, privileged)
	if err != nil {
		writeServiceError(w, h.logger, "redact_failed", err)
		return
	}

	response := RedactTextResponse{Text: text, Redacted: !privileged}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
