package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-assess-api/api/swagger"
	"github.com/noah-isme/exam-assess-api/internal/handler"
	"github.com/noah-isme/exam-assess-api/internal/middleware"
	"github.com/noah-isme/exam-assess-api/internal/models"
	"github.com/noah-isme/exam-assess-api/internal/repository"
	"github.com/noah-isme/exam-assess-api/internal/service"
	"github.com/noah-isme/exam-assess-api/pkg/cache"
	"github.com/noah-isme/exam-assess-api/pkg/config"
	"github.com/noah-isme/exam-assess-api/pkg/database"
	"github.com/noah-isme/exam-assess-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-assess-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-assess-api/pkg/middleware/requestid"
)

// @title Exam Assessment API
// @version 0.1.0
// @description Examination assessment and grading engine
// @BasePath /api/v1
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

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Grading.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Grading.RankingCacheTTL, logr, cfg.Grading.CacheEnabled && cacheRepo != nil)

	markRepo := repository.NewMarkRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	examRepo := repository.NewExamRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	summarySvc := service.NewSummaryService(markRepo, summaryRepo, studentRepo, cacheSvc, metricsSvc, logr)
	markSvc := service.NewMarkService(markRepo, examRepo, studentRepo, summarySvc, metricsSvc, validate, logr, cfg.Grading.DefaultPassRatio)
	reviewSvc := service.NewReviewService(markRepo, examRepo, studentRepo, summarySvc, validate, logr)
	termSvc := service.NewTermService(markRepo, studentRepo, metricsSvc, validate, logr, cfg.Grading.WeightTolerance)

	markHandler := handler.NewMarkHandler(markSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	summaryHandler := handler.NewSummaryHandler(summarySvc)
	termHandler := handler.NewTermHandler(termSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

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
	api.Use(middleware.JWT(cfg.JWT.Secret))

	entry := api.Group("")
	entry.Use(middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin))
	entry.POST("/marks", markHandler.Upsert)
	entry.POST("/marks/bulk", markHandler.Bulk)
	entry.GET("/exams/:examId/students/:studentId/marks", markHandler.List)
	entry.GET("/exams/:examId/students/:studentId/summary", summaryHandler.Get)
	entry.GET("/exams/:examId/classes/:classId/ranking", summaryHandler.Ranking)
	entry.POST("/reviews/submit", reviewHandler.Submit)
	entry.POST("/terms/compute", termHandler.Compute)

	review := api.Group("")
	review.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	review.POST("/reviews/approve", reviewHandler.Approve)
	review.POST("/reviews/request-correction", reviewHandler.RequestCorrection)
	review.POST("/exams/:examId/classes/:classId/summaries/recompute", summaryHandler.Recompute)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
