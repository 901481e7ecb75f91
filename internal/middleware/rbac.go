package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/clinsight/biomed-admin-api/internal/models"
	appErrors "github.com/clinsight/biomed-admin-api/pkg/errors"
	"github.com/clinsight/biomed-admin-api/pkg/response"
)

// RequireRoles blocks callers whose token role is not in the allowed set.
// Route handlers behind it still re-check the role against the database
// before doing anything privileged; this is just the cheap first gate.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
