package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows any origin. When clientURL is set, only that origin is allowed.
func CORSMiddleware(clientURL string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Origin", "Content-Type", "Accept", "Authorization", APIKeyHeader},
		ExposeHeaders:             []string{"Content-Length"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusNoContent,
	}
	if clientURL != "" {
		cfg.AllowOrigins = []string{clientURL}
	} else {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}
