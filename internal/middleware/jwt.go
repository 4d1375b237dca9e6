package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
	"github.com/noah-isme/roadsafety-api/pkg/logger"
	"github.com/noah-isme/roadsafety-api/pkg/response"
)

// Context keys storing the authenticated caller.
const (
	ContextUserKey   = "currentUser"
	ContextClaimsKey = "currentClaims"
)

// Authenticator resolves a bearer token to the current caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, *models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token. The role is
// resolved from storage on every request, never from the token.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			return
		}

		principal, claims, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ContextUserKey, principal)
		c.Set(ContextClaimsKey, claims)
		c.Set(logger.ContextUserIDKey, principal.User.ID)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller stored by JWT.
func PrincipalFrom(c *gin.Context) (*models.Principal, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*models.Principal)
	return principal, ok && principal != nil
}

// ClaimsFrom returns the validated token claims stored by JWT.
func ClaimsFrom(c *gin.Context) (*models.JWTClaims, bool) {
	value, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok && claims != nil
}
