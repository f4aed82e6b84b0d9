package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"microsocial/docs"
	"microsocial/internal/pkg/config"
	"microsocial/internal/pkg/middleware"
	"microsocial/internal/pkg/moderation"
	"microsocial/internal/pkg/push"
	"microsocial/internal/pkg/registry"
	"microsocial/internal/pkg/uploader"
	"microsocial/pkg/database"
	"microsocial/pkg/logger"
	"microsocial/pkg/metrics"
	"microsocial/pkg/response"

	common "microsocial/internal/pkg/common"

	// Each domain registers itself with the module registry in init.
	_ "microsocial/internal/domain/admin"
	_ "microsocial/internal/domain/follow"
	_ "microsocial/internal/domain/group"
	_ "microsocial/internal/domain/notification"
	_ "microsocial/internal/domain/post"
	_ "microsocial/internal/domain/search"
	_ "microsocial/internal/domain/user"
)

// @title MicroSocial API
// @version 1.0
// @description Server API for the MicroSocial platform: profiles, posts, follows, groups and notifications.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.LoadConfig()
	cfg := config.GlobalConfig

	logger.Init(cfg.App.Debug)
	defer logger.Sync()

	db := database.InitDatabase()
	rdb := database.InitRedis()
	middleware.SetTokenStore(rdb)

	if err := uploader.InitUploader(); err != nil {
		logger.Log.Fatal("Failed to init uploader", zap.Error(err))
	}
	moderation.InitModerator()
	if err := push.InitPushService(); err != nil {
		// The platform works without push; notifications stay in-app.
		logger.Log.Warn("Push service disabled", zap.Error(err))
	}

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.LoggerMiddleware())
	engine.Use(middleware.RateLimitMiddleware())
	engine.Use(metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsConfig))

	engine.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", metrics.Handler())

	docs.SwaggerInfo.BasePath = "/api"
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Locally stored media is served straight from disk.
	if cfg.Storage.Driver != "oss" {
		engine.Static(cfg.Storage.BaseURL, cfg.Storage.LocalDir)
	}
	engine.POST("/api/upload", middleware.AuthMiddleware(), common.UploadFiles)

	moduleCtx := &registry.ModuleContext{
		DB:     db,
		Redis:  rdb,
		Router: engine,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("Failed to init modules", zap.Error(err))
	}

	logger.Log.Info("Server starting", zap.String("port", cfg.Server.Port))
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		logger.Log.Fatal("Server stopped", zap.Error(err))
	}
}
