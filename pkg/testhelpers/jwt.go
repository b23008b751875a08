// Package testhelpers provides utilities for testing casekeeper components.
package testhelpers

import (
	"encoding/base64"
	"encoding/json"
)

// GenerateTestJWT creates an unsigned (alg: none) token for use when verification is disabled.
func GenerateTestJWT(sub string, roles ...string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	claims := map[string]any{"sub": sub, "aud": "casekeeper"}
	if len(roles) > 0 {
		claims["roles"] = roles
	}
	payload, _ := json.Marshal(claims)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + "."
}

// GenerateTestJWTWithBearer returns the token with a "Bearer " prefix for the Authorization header.
func GenerateTestJWTWithBearer(sub string, roles ...string) string {
	return "Bearer " + GenerateTestJWT(sub, roles...)
}
