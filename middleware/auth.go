package middleware

import (
	"net/http"
	"strings"

	"wheelhouse/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "userID"

// JWTAuthMiddleware requires a bearer token signed with secret and stores its subject under
// ContextUserID. An empty secret disables the check.
func JWTAuthMiddleware(secret string, logger *zap.Logger) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || tokenString == authHeader || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Insufficient authorization",
			})
			return
		}

		userID, err := utils.ExtractIDFromToken(key, tokenString)
		if err != nil {
			logger.Debug("Rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Insufficient authorization",
			})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}
