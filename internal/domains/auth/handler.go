package auth

import (
	"context"
	"net/http"

	"cms-backend/internal/shared/middleware"
	"cms-backend/internal/shared/response"
	"cms-backend/pkg/jwt"
	"cms-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Revoker interface {
	Revoke(ctx context.Context, claims *jwt.Claims) error
}

type Handler struct {
	revoker Revoker
}

func NewHandler(revoker Revoker) *Handler {
	return &Handler{revoker: revoker}
}

// Logout - POST /api/v1/auth/logout (sau AuthMiddleware)
// Token hiện tại bị thu hồi tới khi hết hạn.
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), claims); err != nil {
		logger.Error("logout failed", err)
		response.InternalServerError(c)
		return
	}

	logger.Info("token revoked", map[string]interface{}{
		"user_id": claims.UserID,
		"jti":     claims.ID,
	})
	response.Success(c, http.StatusOK, "Logout successfully", nil)
}
