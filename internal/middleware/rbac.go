package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
	"github.com/noah-isme/roadsafety-api/pkg/response"
)

// RequireRoles lets the request through only when the resolved role is allowed.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			return
		}
		if _, ok := allowed[principal.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this resource"))
			return
		}
		c.Next()
	}
}
