package main

import (
	"context"
	"net/http"
	"time"

	"cms-backend/internal/shared/middleware"
	"cms-backend/internal/shared/response"
	"cms-backend/pkg/container"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		otelgin.Middleware(c.Config.App.Name),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
		middleware.ClientIPMiddleware(),
	)

	auth := middleware.AuthMiddleware(c.JWTManager, c.Revocations)
	admin := []gin.HandlerFunc{auth, middleware.AdminMiddleware()}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		v1.POST("/auth/logout", auth, c.AuthHandler.Logout)

		c.CategoryHandler.Register(v1.Group("/categories"), admin...)
		c.ProductCategoryHandler.Register(v1.Group("/product-categories"), admin...)
		c.MenuHandler.Register(v1.Group("/menus"), admin...)
	}

	return router
}

// healthCheckHandler: DB là bắt buộc, cache chỉ báo trạng thái
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		var dbErr, cacheErr error
		var g errgroup.Group
		g.Go(func() error {
			dbErr = c.DB.Ping(checkCtx)
			return nil
		})
		g.Go(func() error {
			cacheErr = c.Cache.Ping(checkCtx)
			return nil
		})
		_ = g.Wait()

		status := gin.H{
			"status":   "ok",
			"version":  c.Config.App.Version,
			"database": "ok",
			"cache":    "ok",
		}
		if cacheErr != nil {
			status["cache"] = cacheErr.Error()
		}

		if dbErr != nil {
			status["status"] = "degraded"
			status["database"] = dbErr.Error()
			response.Error(ctx, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Database unavailable", status)
			return
		}

		if stats, err := c.DB.Stats(); err == nil {
			status["pool"] = stats
		}
		response.Success(ctx, http.StatusOK, "Service is healthy", status)
	}
}
