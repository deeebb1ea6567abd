package container

import (
	"context"
	"fmt"
	"time"

	"cms-backend/internal/config"
	"cms-backend/internal/domains/auth"
	"cms-backend/internal/domains/category"
	categoryHandler "cms-backend/internal/domains/category/handler"
	"cms-backend/internal/domains/menu"
	menuHandler "cms-backend/internal/domains/menu/handler"
	menuRepo "cms-backend/internal/domains/menu/repository"
	"cms-backend/internal/domains/productcategory"
	productCategoryHandler "cms-backend/internal/domains/productcategory/handler"
	"cms-backend/internal/hierarchy"
	infraCache "cms-backend/internal/infrastructure/cache"
	"cms-backend/internal/infrastructure/database"
	"cms-backend/internal/infrastructure/tracing"
	"cms-backend/pkg/cache"
	"cms-backend/pkg/jwt"
	"cms-backend/pkg/logger"
)

// Container chứa toàn bộ dependencies của application.
// Thứ tự khởi tạo: Config → DB, Cache → Services → Handlers.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  cache.Cache

	JWTManager  *jwt.Manager
	Revocations *jwt.RevocationStore

	CategoryService        *hierarchy.Service
	ProductCategoryService *hierarchy.Service
	MenuItemService        *hierarchy.Service
	MenuService            *menu.Service

	AuthHandler            *auth.Handler
	CategoryHandler        *categoryHandler.CategoryHandler
	ProductCategoryHandler *productCategoryHandler.ProductCategoryHandler
	MenuHandler            *menuHandler.MenuHandler

	shutdownTracing func(context.Context) error
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("config loaded", map[string]interface{}{"env": cfg.App.Environment})

	// Tracing lỗi không chặn startup
	c.shutdownTracing, err = tracing.Init(context.Background(), tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
		Version:     cfg.App.Version,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Error("tracing init failed, continuing without tracing", err)
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	c.DB = database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Cache = c.initCache(ctx)
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	c.Revocations = jwt.NewRevocationStore(c.Cache)

	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}
	c.initHandlers()

	logger.Info("container initialized", nil)
	return c, nil
}

// initCache: Redis lỗi không critical, fallback về cache in-process
func (c *Container) initCache(ctx context.Context) cache.Cache {
	if !c.Config.Redis.Enabled {
		logger.Info("redis disabled, using in-memory cache", nil)
		return cache.NewMemoryCache()
	}

	rc := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := rc.Connect(ctx); err != nil {
		logger.Warn("redis connection failed, using in-memory cache", map[string]interface{}{
			"host":  c.Config.Redis.Host,
			"error": err.Error(),
		})
		_ = rc.Close()
		return cache.NewMemoryCache()
	}

	logger.Info("redis connected", map[string]interface{}{"host": c.Config.Redis.Host})
	return rc
}

func (c *Container) initServices() error {
	pool := c.DB.Pool
	ttl := c.Config.Cache.TreeTTL

	var err error
	if c.CategoryService, err = category.NewService(pool, c.Cache, ttl); err != nil {
		return fmt.Errorf("category service: %w", err)
	}
	if c.ProductCategoryService, err = productcategory.NewService(pool, c.Cache, ttl); err != nil {
		return fmt.Errorf("product category service: %w", err)
	}
	if c.MenuItemService, err = menu.NewItemService(pool, c.Cache, ttl); err != nil {
		return fmt.Errorf("menu item service: %w", err)
	}
	c.MenuService = menu.NewService(menuRepo.NewPostgresRepository(pool), c.MenuItemService)

	return nil
}

func (c *Container) initHandlers() {
	c.AuthHandler = auth.NewHandler(c.Revocations)
	c.CategoryHandler = categoryHandler.NewCategoryHandler(c.CategoryService)
	c.ProductCategoryHandler = productCategoryHandler.NewProductCategoryHandler(c.ProductCategoryService)
	c.MenuHandler = menuHandler.NewMenuHandler(c.MenuService, c.MenuItemService)
}

// Cleanup gọi trong graceful shutdown
func (c *Container) Cleanup() {
	if c.DB != nil {
		_ = c.DB.Close()
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}

	if c.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.shutdownTracing(ctx); err != nil {
			logger.Error("failed to flush traces", err)
		}
	}
}
