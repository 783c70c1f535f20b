package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nexus-ops/servicedesk-api/internal/middleware"
	"github.com/nexus-ops/servicedesk-api/internal/models"
)

// currentClaims extracts the JWT claims placed on the context by the auth
// middleware. Returns nil when the request is unauthenticated.
func currentClaims(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
