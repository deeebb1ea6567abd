package middleware

import (
	"context"
	"strings"

	"cms-backend/internal/shared/response"
	"cms-backend/pkg/jwt"
	"cms-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextClaims = "claims"
)

// TokenValidator là phần jwt.Manager mà middleware cần
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// RevocationChecker trả true nếu token đã logout
type RevocationChecker interface {
	IsRevoked(ctx context.Context, claims *jwt.Claims) (bool, error)
}

// AuthMiddleware - Middleware xác thực JWT token.
// revocations có thể nil (không kiểm tra logout).
func AuthMiddleware(validator TokenValidator, revocations RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, 401, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		claims, err := validator.ValidateAccessToken(token)
		if err != nil {
			logger.Debug("auth: token rejected: " + err.Error())
			response.Abort(c, 401, "UNAUTHORIZED", "invalid token")
			return
		}

		if revocations != nil {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims)
			if err != nil {
				logger.Error("auth: revocation check failed", err)
				response.Abort(c, 500, "INTERNAL_SERVER_ERROR", "Internal server error")
				return
			}
			if revoked {
				response.Abort(c, 401, "UNAUTHORIZED", "token has been revoked")
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// ClaimsFrom lấy claims đã được AuthMiddleware gắn vào context
func ClaimsFrom(c *gin.Context) (*jwt.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
