package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/dinu-sreekumar/studentms/api/swagger"
	"github.com/dinu-sreekumar/studentms/internal/handler"
	"github.com/dinu-sreekumar/studentms/internal/middleware"
	"github.com/dinu-sreekumar/studentms/internal/repository"
	"github.com/dinu-sreekumar/studentms/internal/service"
	"github.com/dinu-sreekumar/studentms/pkg/advisor"
	"github.com/dinu-sreekumar/studentms/pkg/config"
	"github.com/dinu-sreekumar/studentms/pkg/database"
	"github.com/dinu-sreekumar/studentms/pkg/logger"
	corsmiddleware "github.com/dinu-sreekumar/studentms/pkg/middleware/cors"
	reqidmiddleware "github.com/dinu-sreekumar/studentms/pkg/middleware/requestid"
)

// @title Student Roster & AI Advisor API
// @version 0.1.0
// @description Roster CRUD, bulk import/export and Gemini-backed advisor endpoints
// @BasePath /
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

	db, err := database.NewSQLite(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to open roster database", "path", cfg.Database.Path, "error", err)
	}
	defer db.Close() //nolint:errcheck

	students := repository.NewStudentRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := students.Init(ctx); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to initialise schema", "error", err)
	}
	cancel()

	sessions, err := newSessionStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to init session store", "error", err)
	}

	advisorClient := advisor.NewClient(cfg.Advisor)
	if !advisorClient.Enabled() {
		logr.Warn("GEMINI_API_KEY not configured; AI advisor features are disabled")
	}

	metricsSvc := service.NewMetricsService()
	studentSvc := service.NewStudentService(students, nil, logr)
	transferSvc := service.NewTransferService(students, logr)
	advisorSvc := service.NewAdvisorService(students, advisorClient, sessions, metricsSvc, logr)
	sessionSvc := service.NewSessionService(sessions, studentSvc, cfg.Sessions.ClearConfirmTTL, logr)

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
		c.JSON(http.StatusOK, gin.H{"status": "ready", "advisor_enabled": advisorClient.Enabled()})
	})

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	studentHandler := handler.NewStudentHandler(studentSvc)
	transferHandler := handler.NewTransferHandler(transferSvc)
	advisorHandler := handler.NewAdvisorHandler(advisorSvc)
	rosterHandler := handler.NewRosterHandler(sessionSvc)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/students", studentHandler.List)
		api.POST("/students", studentHandler.Create)
		api.POST("/students/import", transferHandler.Import)
		api.GET("/students/export", transferHandler.Export)
		api.GET("/students/:studentId", studentHandler.Get)
		api.PUT("/students/:studentId", studentHandler.Update)
		api.DELETE("/students/:studentId", studentHandler.Delete)

		api.POST("/roster/clear", rosterHandler.RequestClear)
		api.POST("/roster/clear/confirm", rosterHandler.ConfirmClear)
		api.POST("/roster/clear/cancel", rosterHandler.CancelClear)

		api.POST("/advisor/ask", advisorHandler.Ask)
		api.POST("/advisor/reviews/:studentId", advisorHandler.Review)
		api.GET("/advisor/sessions/:sessionId", advisorHandler.Transcript)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "db", cfg.Database.Path)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func newSessionStore(cfg *config.Config) (repository.SessionStore, error) {
	if cfg.Sessions.Store != config.SessionStoreRedis {
		return repository.NewMemorySessionStore(cfg.Sessions.TranscriptTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return repository.NewRedisSessionStore(client, cfg.Sessions.TranscriptTTL), nil
}
