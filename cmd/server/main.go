package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/taskquest-api/internal/config"
	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/database"
	"github.com/yukikurage/taskquest-api/internal/handlers"
	"github.com/yukikurage/taskquest-api/internal/middleware"
	"github.com/yukikurage/taskquest-api/internal/notifier"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/services"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{Formatter: middleware.LogFormatter}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", constants.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", constants.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	store := newSessionStore(cfg)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Write routes share one limit across instances through Redis.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer redisClient.Close()
	writeLimit := middleware.WritesOnly(middleware.NewDistributedRateLimiter(redisClient).Middleware("writes", middleware.RateLimit{
		Rate:    cfg.WriteLimitPerMin,
		Window:  time.Minute,
		KeyFunc: middleware.UserKeyFunc,
	}))

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	var achievementNotifier services.AchievementNotifier = notifier.Noop{}
	if cfg.DiscordBotToken != "" {
		discord, err := notifier.NewDiscordNotifierFromToken(cfg.DiscordBotToken, cfg.DiscordAchievementsChannelID)
		if err != nil {
			log.Printf("Discord notifications disabled: %v", err)
		} else {
			achievementNotifier = discord
		}
	}

	repo := repository.NewStore(database.GetDB())
	membership := services.NewMembershipService(repo)
	gate := services.NewAuthorizationGate(membership)
	progression := services.NewProgressionService(repo, cfg.XPMaxRetries)

	svc := handlers.Services{
		Auth:      services.NewAuthService(repo),
		User:      services.NewUserService(repo),
		Workspace: services.NewWorkspaceService(repo, membership),
		Team:      services.NewTeamService(repo, membership),
		Task: services.NewTaskService(repo, gate, progression, achievementNotifier, aiService, services.TaskConfig{
			AllowUnarchive: cfg.AllowUnarchive,
			MaxRetries:     cfg.XPMaxRetries,
		}),
		Progression: progression,
		Message:     services.NewMessageService(repo, membership),
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "TaskQuest API is running",
		})
	})

	handlers.RegisterRoutes(r, svc, writeLimit)

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newSessionStore(cfg *config.Config) sessions.Store {
	if cfg.SessionStore == "cookie" {
		return cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store, err := redisStore.NewStore(
		10,              // Redis pool size
		"tcp",           // network type
		cfg.RedisAddr(), // Redis address from config
		"",              // username (empty for default user)
		"",              // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	return store
}
