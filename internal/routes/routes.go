package routes

import (
	"fmt"
	"time"

	"clinic-booking-server/internal/cache"
	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/policy"
	"clinic-booking-server/internal/scheduling"
	"clinic-booking-server/internal/timeslot"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, scheduleCache cache.Cache) error {
	grid, err := timeslot.NewGrid(cfg.Slots.Open, cfg.Slots.Close, cfg.Slots.IntervalMinutes)
	if err != nil {
		return fmt.Errorf("invalid slot grid config: %w", err)
	}
	engine := scheduling.NewEngine(db, grid)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	bookingSourceHandler := handlers.NewBookingSourceHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(engine, scheduleCache,
		time.Duration(cfg.Cache.ScheduleTTLSeconds)*time.Second)
	statsHandler := handlers.NewStatsHandler(engine)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg, db))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Doctor directory: readable by all booking roles, managed by admins
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", middleware.RequireOperation(policy.OpDoctorsRead), doctorHandler.List)
			doctorRoutes.GET("/active", middleware.RequireOperation(policy.OpDoctorsRead), doctorHandler.ListActive)
			doctorRoutes.POST("", middleware.RequireOperation(policy.OpDoctorsWrite), doctorHandler.Create)
			doctorRoutes.PUT("/:id", middleware.RequireOperation(policy.OpDoctorsWrite), doctorHandler.Update)
			doctorRoutes.DELETE("/:id", middleware.RequireOperation(policy.OpDoctorsWrite), doctorHandler.Delete)
		}

		sourceRoutes := private.Group("/booking-sources")
		{
			sourceRoutes.GET("", middleware.RequireOperation(policy.OpBookingSourcesRead), bookingSourceHandler.List)
			sourceRoutes.GET("/active", middleware.RequireOperation(policy.OpBookingSourcesRead), bookingSourceHandler.ListActive)
			sourceRoutes.POST("", middleware.RequireOperation(policy.OpBookingSourcesWrite), bookingSourceHandler.Create)
			sourceRoutes.PUT("/:id", middleware.RequireOperation(policy.OpBookingSourcesWrite), bookingSourceHandler.Update)
			sourceRoutes.DELETE("/:id", middleware.RequireOperation(policy.OpBookingSourcesWrite), bookingSourceHandler.Delete)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			// Full patient detail lists are restricted; call center only sees
			// the anonymized schedule view and its own bookings.
			appointmentRoutes.GET("", middleware.RequireOperation(policy.OpAppointmentsListAll), appointmentHandler.ListAll)
			appointmentRoutes.GET("/range", middleware.RequireOperation(policy.OpAppointmentsListAll), appointmentHandler.ListRange)
			appointmentRoutes.GET("/schedule", middleware.RequireOperation(policy.OpAppointmentsListSchedule), appointmentHandler.ListSchedule)
			appointmentRoutes.GET("/mine", middleware.RequireOperation(policy.OpAppointmentsListMine), appointmentHandler.ListMine)
			appointmentRoutes.POST("", middleware.RequireOperation(policy.OpAppointmentsCreate), appointmentHandler.Create)
			appointmentRoutes.PUT("/:id", middleware.RequireOperation(policy.OpAppointmentsUpdate), appointmentHandler.Update)
			appointmentRoutes.DELETE("/:id", middleware.RequireOperation(policy.OpAppointmentsDelete), appointmentHandler.Delete)
		}

		statsRoutes := private.Group("/stats")
		{
			statsRoutes.GET("/mine", middleware.RequireOperation(policy.OpStatsRead), statsHandler.Mine)
			statsRoutes.GET("/all", middleware.RequireOperation(policy.OpStatsRead), statsHandler.All)
		}

		// User management routes (admin-only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RequireOperation(policy.OpUsersManage))
		{
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/pending", userHandler.GetPendingUsers)
			userRoutes.PATCH("/:id/role", userHandler.UpdateRole)
			userRoutes.PATCH("/:id/approve", userHandler.ApproveUser)
			userRoutes.PATCH("/:id/name", userHandler.UpdateName)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return nil
}
