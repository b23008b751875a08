package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/auth"
	"github.com/spectral-records/casekeeper/pkg/testhelpers"
)

// passThroughScope stands in for the database scope middleware.
func passThroughScope(next http.HandlerFunc) http.HandlerFunc { return next }

// newTestAuthMiddleware builds the real auth stack with signature verification disabled.
func newTestAuthMiddleware(t *testing.T) *auth.Middleware {
	t.Helper()
	jwksClient, err := auth.NewJWKSClient(context.Background(), &auth.JWKSConfig{EnableVerification: false})
	require.NoError(t, err)

	authService := auth.NewAuthService(jwksClient, []string{"case_manager", "admin"}, zap.NewNop())
	return auth.NewMiddleware(authService, zap.NewNop())
}

const (
	investigatorSub = "7d1f2c3a-0d7e-4a59-9a55-0c3b1f7c9e01"
	managerSub      = "1b6a8f0e-5c2d-4f8e-b0b4-3e2a9d6c7f12"
)

// doRequest sends a request through mux. role "" means unauthenticated.
func doRequest(t *testing.T, mux http.Handler, method, path string, body any, roles ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if roles != nil {
		sub := investigatorSub
		for _, role := range roles {
			if role == "case_manager" {
				sub = managerSub
			}
		}
		req.Header.Set("Authorization", testhelpers.GenerateTestJWTWithBearer(sub, roles...))
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the ApiResponse envelope and its data into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) ApiResponse {
	t.Helper()

	var envelope struct {
		ApiResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	if out != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.ApiResponse
}
