package main

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"clinic-booking-server/internal/cache"
	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/routes"
	"clinic-booking-server/pkg/logger"
)

func main() {
	// Load environment variables; a missing .env is fine in production.
	_ = godotenv.Load()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{
		DSN:        cfg.Database.DSN,
		SQLitePath: cfg.Database.SQLitePath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// Schedule-view cache: Redis when configured, in-memory otherwise. A
	// disabled cache still gets the memory backend so handlers never see nil.
	var scheduleCache cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		scheduleCache, err = cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory cache")
			scheduleCache = cache.NewMemoryCache()
		}
	} else {
		scheduleCache = cache.NewMemoryCache()
	}
	defer scheduleCache.Close()

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes - passing DB and config to let routes.go create the handlers
	if err := routes.SetupRoutes(router, db, cfg, scheduleCache); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up routes")
	}

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("port", cfg.Port).Msg("Server starting")
	if err := router.Run(serverAddr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
