package middleware

import (
	"net/http"
	"strings"

	"github.com/VelourMedia/pulsetrack-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards operator endpoints with a bearer JWT. Token
// issuance is external; we only verify the signature.
func AdminAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin auth not configured"})
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := security.ValidateJWT(token, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("adminClaims", claims)
		c.Next()
	}
}
