package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/viksitkanpur/portal/internal/analyzer"
	"github.com/viksitkanpur/portal/internal/cache"
	"github.com/viksitkanpur/portal/internal/config"
	"github.com/viksitkanpur/portal/internal/database"
	"github.com/viksitkanpur/portal/internal/handler"
	"github.com/viksitkanpur/portal/internal/middleware"
	"github.com/viksitkanpur/portal/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		// Continue without Redis cache (fail-open)
		redisCache = nil
	}

	// Image analyzer sidecar; submissions degrade gracefully without it
	analyzerClient := analyzer.NewClient(cfg.AnalyzerURL)

	googleConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret, googleConfig, cfg.FrontendURL)
	problemHandler := handler.NewProblemHandler(db, redisCache, analyzerClient)
	userHandler := handler.NewUserHandler(db)
	adminHandler := handler.NewAdminHandler(db)

	// Setup router
	r := gin.Default()

	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	allowOrigin := strings.Join(cfg.CORSOrigins, ", ")
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		// Auth
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/admin-login", authHandler.AdminLogin)
		api.POST("/auth/refresh", authHandler.RefreshToken)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/google", authHandler.GoogleAuth)
		api.GET("/auth/google/callback", authHandler.GoogleCallback)
		api.GET("/auth/me", middleware.AuthMiddleware(cfg.JWTSecret), authHandler.Me)

		// Problems
		api.GET("/problems", middleware.AuthMiddleware(cfg.JWTSecret), problemHandler.List)
		api.GET("/problems/:id", middleware.AuthMiddleware(cfg.JWTSecret), problemHandler.Get)
		api.POST("/problems", middleware.AuthMiddleware(cfg.JWTSecret), problemHandler.Submit)
		api.PATCH("/problems/:id", middleware.StaffMiddleware(cfg.JWTSecret), problemHandler.Update)
		api.POST("/analyze", middleware.AuthMiddleware(cfg.JWTSecret), problemHandler.Analyze)

		// Users
		api.GET("/users", middleware.StaffMiddleware(cfg.JWTSecret), userHandler.List)
		api.PUT("/users/:id", middleware.AuthMiddleware(cfg.JWTSecret), userHandler.Update)

		// Admin dashboard
		api.GET("/admin/stats",
			middleware.RoleMiddleware(cfg.JWTSecret, model.RoleDepartmentHead, model.RoleDistrictMagistrate),
			adminHandler.GetStats)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("VIKSIT KANPUR API starting on port %s", port)
	if err := r.Run(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
