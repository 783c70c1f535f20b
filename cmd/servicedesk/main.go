package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nexus-ops/servicedesk-api/api/swagger"
	"github.com/nexus-ops/servicedesk-api/internal/handler"
	"github.com/nexus-ops/servicedesk-api/internal/middleware"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	"github.com/nexus-ops/servicedesk-api/internal/repository"
	"github.com/nexus-ops/servicedesk-api/internal/seed"
	"github.com/nexus-ops/servicedesk-api/internal/service"
	"github.com/nexus-ops/servicedesk-api/pkg/cache"
	"github.com/nexus-ops/servicedesk-api/pkg/config"
	"github.com/nexus-ops/servicedesk-api/pkg/database"
	"github.com/nexus-ops/servicedesk-api/pkg/logger"
	corsmiddleware "github.com/nexus-ops/servicedesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nexus-ops/servicedesk-api/pkg/middleware/requestid"
)

// @title Service Desk API
// @version 1.0.0
// @description Repair request tracking for school facilities
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	roleMenuRepo := repository.NewRoleMenuRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	repairRepo := repository.NewRepairRequestRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	permissionSvc := service.NewPermissionService(permissionRepo, cacheRepo, userRepo, validate, logr, metricsSvc)
	menuSvc := service.NewMenuService(menuRepo, roleMenuRepo, roleRepo, cacheRepo, userRepo, validate, logr, metricsSvc, service.MenuServiceConfig{
		CacheEnabled: cfg.Menus.CacheEnabled,
		CacheTTL:     cfg.Menus.CacheTTL,
	})
	repairSvc := service.NewRepairRequestService(repairRepo, permissionSvc, userRepo, validate, logr, metricsSvc)
	exportSvc := service.NewExportService(repairRepo, nil, nil, service.ExportConfig{
		Enabled: cfg.Exports.Enabled,
		MaxRows: cfg.Exports.MaxRows,
	}, logr)
	userSvc := service.NewUserService(userRepo, roleRepo, validate, logr)
	roleSvc := service.NewRoleService(roleRepo, validate, logr)

	if cfg.Seed.Enabled {
		seeder := seed.NewSeeder(userRepo, roleRepo, menuRepo, roleMenuRepo, permissionRepo, logr)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := seeder.Run(ctx, cfg.Seed); err != nil {
			cancel()
			logr.Sugar().Fatalw("seed failed", "error", err)
		}
		cancel()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	repairHandler := handler.NewRepairRequestHandler(repairSvc)
	electricianHandler := handler.NewElectricianHandler(repairSvc)
	adminRepairHandler := handler.NewAdminRepairHandler(repairSvc, exportSvc)
	menuHandler := handler.NewMenuHandler(menuSvc)
	adminMenuHandler := handler.NewAdminMenuHandler(menuSvc)
	roleMenuHandler := handler.NewRoleMenuHandler(menuSvc)
	userHandler := handler.NewUserHandler(userSvc)
	roleHandler := handler.NewRoleHandler(roleSvc)
	permissionHandler := handler.NewPermissionHandler(permissionSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	app := api.Group("/app", middleware.JWT(authSvc))
	{
		repair := app.Group("/repair-request")
		repair.POST("", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsCreate), repairHandler.Create)
		repair.PUT("/:id", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsUpdate), repairHandler.Update)
		repair.POST("/:id/cancel", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsCancel), repairHandler.Cancel)
		repair.GET("/my-list", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsMyList), repairHandler.MyList)
		repair.GET("/:id/detail", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsDetail), repairHandler.Detail)

		electrician := app.Group("/electrician-repair-request")
		electrician.GET("", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsElectricianList), electricianHandler.Queue)
		// POST kept alongside PUT for clients built against the older route.
		electrician.POST("/:id/quote", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsQuote), electricianHandler.Quote)
		electrician.PUT("/:id/quote", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsQuote), electricianHandler.Quote)

		admin := app.Group("/admin-repair-request")
		admin.GET("", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsAdminList), adminRepairHandler.List)
		admin.GET("/approvals", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsAdminList), adminRepairHandler.Approvals)
		admin.GET("/export", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsAdminList), adminRepairHandler.Export)
		admin.POST("/:id/approve", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsApprove), adminRepairHandler.Approve)
		admin.POST("/:id/reject", middleware.RequirePermission(permissionSvc, models.PermRepairRequestsReject), adminRepairHandler.Reject)

		adminMenu := app.Group("/admin-menu", middleware.RequirePermission(permissionSvc, models.PermMenusManage))
		adminMenu.GET("", adminMenuHandler.List)
		adminMenu.POST("", adminMenuHandler.Create)
		adminMenu.PUT("/:id", adminMenuHandler.Update)
		adminMenu.DELETE("/:id", adminMenuHandler.Delete)

		roleMenu := app.Group("/admin-role-menu", middleware.RequirePermission(permissionSvc, models.PermRoleMenusManage))
		roleMenu.GET("/by-role/:roleId", roleMenuHandler.ByRole)
		roleMenu.POST("/save", roleMenuHandler.Save)

		app.GET("/menu/my-menus", menuHandler.MyMenus)
	}

	identity := api.Group("/identity", middleware.JWT(authSvc), middleware.RequireRole(models.RoleNameAdmin))
	{
		identity.GET("/users", userHandler.List)
		identity.POST("/users", userHandler.Create)
		identity.GET("/users/:id", userHandler.Get)
		identity.PUT("/users/:id", userHandler.Update)
		identity.DELETE("/users/:id", userHandler.Delete)
		identity.GET("/users/:id/roles", userHandler.GetRoles)
		identity.PUT("/users/:id/roles", userHandler.SetRoles)

		identity.GET("/roles", roleHandler.List)
		identity.POST("/roles", roleHandler.Create)
		identity.GET("/roles/:id", roleHandler.Get)
		identity.PUT("/roles/:id", roleHandler.Update)
		identity.DELETE("/roles/:id", roleHandler.Delete)
	}

	permissions := api.Group("/permission-management", middleware.JWT(authSvc), middleware.RequireRole(models.RoleNameAdmin))
	{
		permissions.GET("/permissions", permissionHandler.Get)
		permissions.PUT("/permissions", permissionHandler.Update)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
