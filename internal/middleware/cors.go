package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/temcen/hybrec/internal/config"
)

func CORS(cfg *config.Config) gin.HandlerFunc {
	allowAll := false
	for _, origin := range cfg.Security.CORS.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
	}

	return cors.New(cors.Config{
		AllowOrigins: cfg.Security.CORS.AllowedOrigins,
		AllowMethods: cfg.Security.CORS.AllowedMethods,
		AllowHeaders: cfg.Security.CORS.AllowedHeaders,
		ExposeHeaders: []string{
			"X-Recommendation-Strategy", "X-Recommendation-ID",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
		},
		// Credentials cannot be combined with a wildcard origin.
		AllowCredentials: !allowAll,
	})
}
