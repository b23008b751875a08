package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spectral-records/casekeeper/pkg/apperrors"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantError string
		wantLog   bool
	}{
		{"validation", apperrors.NewValidationError("from", "is required"), http.StatusBadRequest, "validation_error", false},
		{"not found", fmt.Errorf("report 3: %w", apperrors.ErrNotFound), http.StatusNotFound, "not_found", false},
		{"internal", errors.New("failed to connect: password=hunter2"), http.StatusInternalServerError, "get_report_failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			rec := httptest.NewRecorder()

			writeServiceError(rec, zap.New(core), "get_report_failed", tt.err)

			require.Equal(t, tt.wantCode, rec.Code)
			resp := decodeData(t, rec, nil)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.NotContains(t, rec.Body.String(), "hunter2")

			if !tt.wantLog {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			assert.NotContains(t, logs.All()[0].ContextMap()["error"], "hunter2")
		})
	}
}
