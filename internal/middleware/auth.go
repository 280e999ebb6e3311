package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/models"
)

const callerKey = "caller"

// IdentityToken verifies a Bearer ID token when one is presented and stores the caller
// in the Gin context. It never aborts: operations decide for themselves whether an
// anonymous caller is acceptable.
func IdentityToken(verifier core.TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			logger.Debug("Ignoring malformed Authorization header", zap.String("path", c.Request.URL.Path))
			c.Next()
			return
		}

		caller, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Info("ID token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.Next()
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the verified caller, or nil for an anonymous request.
func CallerFrom(c *gin.Context) *models.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*models.Caller)
	return caller
}
