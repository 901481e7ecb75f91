package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/clinsight/biomed-admin-api/api/swagger"
	"github.com/clinsight/biomed-admin-api/internal/filestore"
	"github.com/clinsight/biomed-admin-api/internal/handler"
	"github.com/clinsight/biomed-admin-api/internal/middleware"
	"github.com/clinsight/biomed-admin-api/internal/models"
	"github.com/clinsight/biomed-admin-api/internal/repository"
	"github.com/clinsight/biomed-admin-api/internal/service"
	"github.com/clinsight/biomed-admin-api/pkg/cache"
	"github.com/clinsight/biomed-admin-api/pkg/config"
	"github.com/clinsight/biomed-admin-api/pkg/database"
	"github.com/clinsight/biomed-admin-api/pkg/logger"
	corsmiddleware "github.com/clinsight/biomed-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/clinsight/biomed-admin-api/pkg/middleware/requestid"
)

// @title Biomed Admin API
// @version 1.0.0
// @description Reporting and export API for biomedical equipment and patient survey data
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	// The export pipeline is the reason this service exists; refuse to start
	// without a reachable file store configuration.
	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		logr.Sugar().Fatalw("failed to init file store", "error", err)
	}

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Dashboard.CacheTTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	surveyRepo := repository.NewSurveyRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	validate := validator.New()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	surveySvc := service.NewSurveyService(surveyRepo, userRepo, logr)
	equipmentSvc := service.NewEquipmentService(equipmentRepo, logr)
	exportSvc := service.NewExportService(surveySvc, store, metricsSvc, logr)
	dashboardSvc := service.NewDashboardService(surveySvc, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	backfillSvc := service.NewBackfillService(surveyRepo, userRepo, store, cfg.Backfill.DefaultLimit, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	surveyHandler := handler.NewSurveyHandler(surveySvc)
	equipmentHandler := handler.NewEquipmentHandler(equipmentSvc)
	exportHandler := handler.NewExportHandler(exportSvc, logr)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	backfillHandler := handler.NewBackfillHandler(backfillSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/encuestas", surveyHandler.List)
	protected.GET("/servicios", surveyHandler.Services)
	protected.GET("/equipos", equipmentHandler.List)
	protected.GET("/export/download", exportHandler.Download)

	if cfg.Dashboard.Enabled {
		protected.GET("/dashboard/summary", dashboardHandler.Summary)
		protected.GET("/dashboard/export", dashboardHandler.Export)
	}

	if cfg.Backfill.Enabled {
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.POST("/backfill", backfillHandler.Run)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
