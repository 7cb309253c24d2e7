package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AdminMiddleware struct {
	adminEmails []string
}

func NewAdminMiddleware(adminEmails []string) *AdminMiddleware {
	return &AdminMiddleware{
		adminEmails: adminEmails,
	}
}

// RequireAdmin allows only users whose email is on the configured allow-list.
func (m *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := GetEmail(c)
		if email == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		isAdmin := false
		for _, admin := range m.adminEmails {
			if admin == email {
				isAdmin = true
				break
			}
		}

		if !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
