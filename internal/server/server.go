package server

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"anoa.com/typingarena/internal/config"
	"anoa.com/typingarena/internal/mailer"
	"anoa.com/typingarena/internal/middleware"
	"anoa.com/typingarena/internal/queue"
	"anoa.com/typingarena/pkg/cache"
	"anoa.com/typingarena/pkg/clock"

	analyticsHttp "anoa.com/typingarena/internal/modules/analytics/delivery/http"
	analyticsRepo "anoa.com/typingarena/internal/modules/analytics/repository"
	analyticsService "anoa.com/typingarena/internal/modules/analytics/service"

	contentHttp "anoa.com/typingarena/internal/modules/content/delivery/http"
	contentRepo "anoa.com/typingarena/internal/modules/content/repository"
	contentService "anoa.com/typingarena/internal/modules/content/service"

	leaderboardHttp "anoa.com/typingarena/internal/modules/leaderboard/delivery/http"
	leaderboardService "anoa.com/typingarena/internal/modules/leaderboard/service"

	userHttp "anoa.com/typingarena/internal/modules/user/delivery/http"
	userRepo "anoa.com/typingarena/internal/modules/user/repository"
	userService "anoa.com/typingarena/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	cacheClient := cache.NewRedisCache(redisClient)
	jobs := queue.New(redisClient, cfg.QueuePollInterval)

	users := userRepo.NewUserRepository(db)
	analytics := analyticsRepo.NewAnalyticsRepository(db)

	analyticsSvc := analyticsService.NewAnalyticsService(analytics, users, clock.UTC())
	analyticsHandler := analyticsHttp.NewAnalyticsHandler(analyticsSvc)

	leaderboardPublisher := leaderboardService.NewPublisher(cacheClient)
	leaderboardSvc := leaderboardService.NewLeaderboardService(analytics, leaderboardPublisher, redisClient)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc, redisClient)

	authSvc := userService.NewAuthService(users, analytics, cacheClient, jobs,
		cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL, cfg.OTPTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	contents := contentRepo.NewContentRepository(db)
	contentSvc := contentService.NewContentService(contents, cacheClient, jobs)
	contentHandler := contentHttp.NewContentHandler(contentSvc)

	// Queue consumers: OTP/notification mail and passage-pool preloading.
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	jobs.Register(queue.TypeSendEmail, func(ctx context.Context, job queue.Job) error {
		var payload queue.EmailPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return err
		}
		return mail.Send(payload.To, payload.Subject, payload.Body)
	})
	jobs.Register(queue.TypePreloadContent, func(ctx context.Context, job queue.Job) error {
		var payload queue.PreloadPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return err
		}
		return contentSvc.PreloadPool(ctx, payload.Difficulty)
	})

	if redisClient != nil {
		go jobs.StartWorker(context.Background())
		go leaderboardSvc.StartRefreshWorker(context.Background(), cfg.LeaderboardRefresh)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	api.GET("/users/:username/summary", analyticsHandler.GetPublicSummary)

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/users/me", authHandler.GetMe)
		protected.DELETE("/users/me", authHandler.DeleteAccount)

		protected.POST("/tests", analyticsHandler.SubmitResult)
		protected.GET("/analytics/me", analyticsHandler.GetMyRecord)
		protected.POST("/analytics/me/reset", analyticsHandler.ResetMyRecord)

		protected.GET("/content", contentHandler.GetPassages)

		protected.POST("/leaderboard/refresh", leaderboardHandler.RefreshLeaderboard)
		protected.GET("/leaderboard/ws", leaderboardHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
