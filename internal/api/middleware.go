package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// cronAuthMiddleware gates the trigger path behind a single shared secret
// presented as a bearer token. Requests without the exact expected token
// are rejected before any work begins. Comparison is constant-time.
func cronAuthMiddleware(secret string) gin.HandlerFunc {
	expected := "Bearer " + secret
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if secret == "" ||
			len(header) != len(expected) ||
			subtle.ConstantTimeCompare([]byte(header), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}
		c.Next()
	}
}

// corsMiddleware creates a CORS middleware with the configured origins.
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Content-Length", "Accept-Encoding",
			"Authorization", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})
}
