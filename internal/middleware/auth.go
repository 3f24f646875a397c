package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/autoapprove/internal/auth"
)

// ContextKeyAdminID is where AuthMiddleware stores the caller's admin id.
const ContextKeyAdminID = "admin_id"

// TokenValidator is the part of auth.Validator the middleware needs.
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware rejects any request without a valid admin bearer token.
// On success the admin id is stored in the gin context and the chain
// continues.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		// "Bearer eyJhbG..." -> ["Bearer", "eyJhbG..."]
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format, expected: Bearer <token>",
			})
			return
		}

		claims, err := validator.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyAdminID, claims.AdminID)
		c.Next()
	}
}

// GetAdminID returns the admin id set by AuthMiddleware, or 0 when the
// route is not behind it.
func GetAdminID(c *gin.Context) int64 {
	val, exists := c.Get(ContextKeyAdminID)
	if !exists {
		return 0
	}
	id, ok := val.(int64)
	if !ok {
		return 0
	}
	return id
}
