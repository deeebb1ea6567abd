package middleware

import (
	"cms-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

// ClientIPMiddleware gắn IP thật của client (sau proxy) vào gin context
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("client_ip", utils.ExtractClientIP(c))
		c.Next()
	}
}
