package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
	"github.com/husseinvr97/fasee7System-sub002/pkg/response"
)

// RBAC enforces role-based access control for routes. SUPERADMIN passes every check.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed)+1)
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}
	allowedRoles[models.RoleSuperAdmin] = struct{}{}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
	}
}
