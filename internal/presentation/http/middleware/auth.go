package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/policy"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/response"
	"github.com/sangkips/repairshop-api/pkg/utils"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID    = "user_id"
	ContextUsername  = "username"
	ContextUserRoles = "user_roles"
)

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserRoles, rolesFromClaims(claims))

		c.Next()
	}
}

// rolesFromClaims keeps the known roles of a token and drops the rest
func rolesFromClaims(claims *utils.JWTClaims) enum.RoleSet {
	var roles []enum.Role
	for _, name := range claims.AllRoles() {
		if r, err := enum.ParseRole(name); err == nil {
			roles = append(roles, r)
		}
	}
	return enum.NewRoleSet(roles...)
}

// UserRoles returns the roles AuthMiddleware stored on the context
func UserRoles(c *gin.Context) enum.RoleSet {
	roles, exists := c.Get(ContextUserRoles)
	if !exists {
		return nil
	}
	set, _ := roles.(enum.RoleSet)
	return set
}

// Authorize checks the caller's roles against the segment of the matched route,
// so "/api/v1/repairs/:id/status" is checked as "repairs/status"
func Authorize(table policy.Table, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		segment := policy.SegmentFromPath(prefix, c.FullPath())
		if !policy.IsAuthorized(table, UserRoles(c), segment) {
			response.Forbidden(c, "You do not have permission to perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSegment checks the caller's roles against a fixed segment
func RequireSegment(table policy.Table, segment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.IsAuthorized(table, UserRoles(c), segment) {
			response.Forbidden(c, "You do not have permission to perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}
