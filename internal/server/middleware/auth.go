package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArkusBootcamp2026/ClientFlow-AI/internal/security"
)

const bearerPrefix = "bearer "

// Auth returns gin middleware that validates the Bearer (access) token from the
// Authorization header and sets user_id and session_id on the request context.
// Requests without a valid token are rejected with 401; mount only on protected groups.
func Auth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		sessionID, userID, err := tokens.ValidateAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization"})
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), userID, sessionID))
		c.Next()
	}
}

// OptionalAuth is like Auth but lets unauthenticated requests through without
// identity in context. Used by logout, which accepts either token.
func OptionalAuth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token != "" {
			if sessionID, userID, err := tokens.ValidateAccess(token); err == nil {
				c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), userID, sessionID))
			}
		}
		c.Next()
	}
}

// extractBearer returns the Bearer token from the header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
