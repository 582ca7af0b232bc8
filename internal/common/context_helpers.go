package common

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// GetTokenFromContext retrieves the bearer token from the Authorization header.
// Returns an empty string if not found.
func GetTokenFromContext(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return parts[1]
}

// GetUIDFromContext retrieves the authenticated subject id, or "" when anonymous.
func GetUIDFromContext(c *gin.Context) string {
	return c.GetString(UIDKey)
}

// GetUserRoleFromContext retrieves the user role from the Gin context.
func GetUserRoleFromContext(c *gin.Context) string {
	return c.GetString(UserRoleKey)
}

// GetPageSessionID returns the page-session id sent by the client.
func GetPageSessionID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(PageSessionHeader))
}
