package middleware

import (
	"net/http"
	"strings"

	"github.com/cuesoftinc/cuelabs-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	tokenService *services.TokenService
	testMode     bool
}

func NewAuthMiddleware(tokenService *services.TokenService, testMode bool) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		testMode:     testMode,
	}
}

// RequireAuth authenticates API requests with a bearer token. In test mode
// the X-Test-User-ID and X-Test-Email headers stand in for a real identity.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.testMode {
			userID := c.GetHeader("X-Test-User-ID")
			if userID == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "X-Test-User-ID header required in test mode"})
				c.Abort()
				return
			}
			c.Set("userID", userID)
			c.Set("email", c.GetHeader("X-Test-Email"))
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := m.tokenService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// GetUserID returns the authenticated user's remote record ID.
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get("userID")
	if !exists {
		return ""
	}
	return userID.(string)
}

func GetEmail(c *gin.Context) string {
	email, exists := c.Get("email")
	if !exists {
		return ""
	}
	return email.(string)
}
