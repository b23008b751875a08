package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
	ErrMissingSubject       = errors.New("missing subject in token")
)

// AuthService extracts and validates bearer tokens and decides the privilege bit.
type AuthService interface {
	// ValidateRequest extracts and validates the JWT from the Authorization header.
	// Returns the validated claims, the raw token string, or an error.
	ValidateRequest(r *http.Request) (*Claims, string, error)

	// IsPrivileged reports whether claims grant unredacted access.
	IsPrivileged(claims *Claims) bool
}

type authService struct {
	jwksClient      JWKSClientInterface
	privilegedRoles []string
	logger          *zap.Logger
}

// NewAuthService creates a new AuthService. Holders of any of privilegedRoles
// see unredacted case text.
func NewAuthService(jwksClient JWKSClientInterface, privilegedRoles []string, logger *zap.Logger) AuthService {
	return &authService{
		jwksClient:      jwksClient,
		privilegedRoles: privilegedRoles,
		logger:          logger,
	}
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		s.logger.Debug("No JWT found in request",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method))
		return nil, "", ErrMissingAuthorization
	}

	scheme, tokenString, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
		s.logger.Debug("Invalid Authorization header format",
			zap.String("path", r.URL.Path))
		return nil, "", ErrInvalidAuthFormat
	}

	claims, err := s.jwksClient.ValidateToken(r.Context(), tokenString)
	if err != nil {
		s.logger.Debug("JWT validation failed",
			zap.Error(err),
			zap.String("path", r.URL.Path))
		return nil, "", err
	}

	if claims.Subject == "" {
		return nil, "", ErrMissingSubject
	}

	return claims, tokenString, nil
}

func (s *authService) IsPrivileged(claims *Claims) bool {
	return claims.HasAnyRole(s.privilegedRoles...)
}

var _ AuthService = (*authService)(nil)
