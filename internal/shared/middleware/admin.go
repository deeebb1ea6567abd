package middleware

import (
	"net/http"

	"cms-backend/internal/shared/response"
	"cms-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware checks if user has admin role (set by AuthMiddleware)
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok || role != jwt.RoleAdmin {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: admin role required")
			return
		}

		c.Next()
	}
}
