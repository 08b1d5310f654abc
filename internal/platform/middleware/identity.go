package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// The API gateway authenticates callers and forwards their identity in these
// headers. This service trusts them as-is.
const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"

	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
)

// Roles forwarded by the gateway.
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// IdentityMiddleware rejects requests without a valid X-User-ID and stores
// the caller identity on the context.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(userIDHeader))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "unauthorized", "message": "missing or invalid " + userIDHeader},
			})
			return
		}
		c.Set(ctxUserID, id)
		c.Set(ctxUserRole, c.GetHeader(userRoleHeader))
		c.Next()
	}
}

// RequireRole allows only callers whose forwarded role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := GetUserRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "forbidden", "message": "insufficient role"},
		})
	}
}

// GetUserID returns the caller ID set by IdentityMiddleware.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRole returns the caller role set by IdentityMiddleware.
func GetUserRole(c *gin.Context) (string, bool) {
	role := c.GetString(ctxUserRole)
	return role, role != ""
}
