package middleware

import (
	"net/http"
	"strings"

	"neelosewa/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// TokenParser verifies an access token and returns its identity.
type TokenParser interface {
	ParseToken(raw string) (domain.RequestContext, error)
}

// RequireAuth rejects requests without a valid Bearer token and stores the
// caller's id and role on the context.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "Not authorized, no token",
				"request_id": GetRequestID(c),
			})
			return
		}
		rc, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "Not authorized, " + err.Error(),
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Set(userIDKey, rc.UserID)
		c.Set(userRoleKey, rc.Role)
		c.Next()
	}
}

// Identity returns the authenticated caller set by RequireAuth.
func Identity(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		UserID:    c.GetString(userIDKey),
		Role:      c.GetString(userRoleKey),
		RequestID: GetRequestID(c),
	}
}
