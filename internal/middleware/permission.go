package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nexus-ops/servicedesk-api/internal/models"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
	"github.com/nexus-ops/servicedesk-api/pkg/response"
)

type permissionChecker interface {
	IsGranted(ctx context.Context, claims *models.JWTClaims, name string) (bool, error)
}

// RequirePermission guards a route behind a named permission. Grants are
// resolved server-side from the caller's roles and direct user grants.
func RequirePermission(permissions permissionChecker, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		granted, err := permissions.IsGranted(c.Request.Context(), claims, name)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !granted {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAnyPermission passes when the caller holds at least one of the named
// permissions.
func RequireAnyPermission(permissions permissionChecker, names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		for _, name := range names {
			granted, err := permissions.IsGranted(c.Request.Context(), claims, name)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			if granted {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
