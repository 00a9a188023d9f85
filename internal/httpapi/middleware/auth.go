package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/solaceapp/solace-backend/internal/auth"
)

// UserIDKey is where AuthRequired stores the authenticated user's ID
// (uint64) in the gin context.
const UserIDKey = "auth.user_id"

// AuthRequired validates the bearer token and injects the typed user ID
// before any handler runs. Handlers never touch the raw token.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    40101,
				"message": "missing bearer token",
				"data":    nil,
			})
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		uid, err := auth.ParseUserID(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    40102,
				"message": "invalid or expired token",
				"data":    nil,
			})
			return
		}

		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// UserID pulls the injected identity back out.
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
