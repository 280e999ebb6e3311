package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIKeyHeader is the header carrying the shared admin key. The "key" query parameter
// is accepted as well.
const APIKeyHeader = "x-api-key"

// RequireAPIKey rejects requests that do not present the configured key.
func RequireAPIKey(expected string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(APIKeyHeader)
		if presented == "" {
			presented = c.Query("key")
		}
		if expected == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
			logger.Warn("Rejected request with missing or invalid API key",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			return
		}
		c.Next()
	}
}
