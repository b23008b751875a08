package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestToken creates an unsigned JWT for dev mode.
func createTestToken(t *testing.T, claims *Claims) string {
	t.Helper()

	headerJSON, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	require.NoError(t, err)
	claimsJSON, err := json.Marshal(claims)
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(claimsJSON) + "."
}

func TestNewJWKSClient_DevMode(t *testing.T) {
	client, err := NewJWKSClient(context.Background(), &JWKSConfig{EnableVerification: false})
	require.NoError(t, err)
	defer client.Close()

	assert.Empty(t, client.endpoints)
}

func TestJWKSClient_ValidateToken_DevMode(t *testing.T) {
	client, err := NewJWKSClient(context.Background(), &JWKSConfig{EnableVerification: false})
	require.NoError(t, err)

	token := createTestToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "investigator-1",
			// Expired tokens still parse in dev mode.
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Roles: []string{"investigator"},
	})

	claims, err := client.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "investigator-1", claims.Subject)
	assert.Equal(t, []string{"investigator"}, claims.Roles)
}

func TestJWKSClient_ValidateToken_DevMode_Garbage(t *testing.T) {
	client, err := NewJWKSClient(context.Background(), &JWKSConfig{EnableVerification: false})
	require.NoError(t, err)

	_, err = client.ValidateToken(context.Background(), "not-a-jwt")
	assert.ErrorContains(t, err, "failed to parse token")
}

func TestJWKSClient_ValidateToken_UnknownIssuer(t *testing.T) {
	// Verification on, no endpoints: every issuer is unauthorized.
	client, err := NewJWKSClient(context.Background(), &JWKSConfig{EnableVerification: true})
	require.NoError(t, err)

	token := createTestToken(t, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "investigator-1",
		Issuer:  "https://rogue.example.com",
	}})

	_, err = client.ValidateToken(context.Background(), token)
	assert.ErrorContains(t, err, "token validation failed")
}
