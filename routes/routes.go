package routes

import (
	"net/http"

	"medisafe/cache"
	"medisafe/config"
	"medisafe/controllers"
	"medisafe/handlers"
	"medisafe/middlewares"
	"medisafe/repositories"
	"medisafe/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(cache *cache.Cache, config *config.AppConfig, db *gorm.DB) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Apply Bearer token validation to all routes
	router.Use(middlewares.ValidateBearerToken(config.GetBearerToken()))

	corsConfig := &middlewares.CorsConfig{
		AllowedOrigins:   []string{"http://localhost:3000", "https://medisafe.example.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	router.Use(middlewares.CorsMiddleware(corsConfig))

	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: 15,
		Burst:             30,
	}))

	router.Use(middlewares.LoggingMiddleware())

	// Repositories
	userRepo := repositories.NewUserRepository(db, cache)
	lifecycleRepo := repositories.NewLifecycleRepository(db, userRepo)
	conversionRepo := repositories.NewConversionRepository(db, userRepo, cache)
	profileRepo := repositories.NewProfileRepository(db, cache)
	doctorRepo := repositories.NewDoctorRepository(db, cache)
	patientRepo := repositories.NewPatientRecordRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	clinicalRepo := repositories.NewClinicalRepository(db)

	// Services
	notificationService := services.NewNotificationService(notificationRepo, userRepo)
	accountService := services.NewAccountService(userRepo, lifecycleRepo, notificationService)
	roleService := services.NewRoleService(userRepo, conversionRepo, notificationService)
	authService := services.NewAuthService(userRepo, profileRepo, patientRepo, notificationService)
	profileService := services.NewProfileService(userRepo, profileRepo, patientRepo, clinicalRepo, notificationService)
	doctorService := services.NewDoctorService(doctorRepo, userRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	roleHandler := handlers.NewRoleHandler(roleService)
	doctorHandler := handlers.NewDoctorHandler(doctorService)
	profileHandler := handlers.NewProfileHandler(profileService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, accountService)

	// Register routes
	authController := controllers.NewAuthController(authHandler)
	authController.RegisterRoutes(router, userRepo)
	controllers.SetupAccountRoutes(router, userRepo, accountHandler, roleHandler)
	controllers.SetupClinicRoutes(router, userRepo, doctorHandler, profileHandler, notificationHandler)
	controllers.SetupRootRoute(router)

	return router
}
