package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"Community_Feed/internal/pkg"
)

const ContextUserIDKey = "user_id"

// AuthMiddleware 必须携带合法的 access token
func AuthMiddleware(tokens *pkg.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}
		if !authenticate(c, tokens, authHeader) {
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware 没有 Authorization 头时按匿名处理；带了但不合法仍然 401
func OptionalAuthMiddleware(tokens *pkg.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && !authenticate(c, tokens, authHeader) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens *pkg.TokenManager, authHeader string) bool {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
		return false
	}

	claims, err := tokens.ParseAccess(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Given token not valid for any token type"})
		return false
	}

	// 注入 user_id
	c.Set(ContextUserIDKey, claims.UserID)
	return true
}

// UserID 匿名请求返回 0
func UserID(c *gin.Context) uint64 {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(uint64)
	return id
}
