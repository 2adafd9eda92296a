package controllers

import (
	"medisafe/handlers"
	"medisafe/middlewares"
	"medisafe/repositories"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
}

func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{Handler: authHandler}
}

// RegisterRoutes initializes all authentication routes directly on the router
func (ac *AuthController) RegisterRoutes(router *gin.Engine, userRepo repositories.UserRepository) {
	// Public routes: No authentication required
	router.POST("/auth/register", ac.Handler.Register)
	router.POST("/auth/login", ac.Handler.Login)
	router.POST("/auth/refresh-token", ac.Handler.RefreshToken)
	router.POST("/auth/request-password-reset", ac.Handler.RequestPasswordReset)
	router.POST("/auth/reset-password", ac.Handler.ConfirmPasswordReset)

	// Protected routes: Requires a valid token
	authGroup := router.Group("/auth").Use(middlewares.AuthMiddleware(userRepo))
	{
		authGroup.POST("/logout", ac.Handler.Logout)
		authGroup.POST("/change-password", ac.Handler.UpdatePassword)
	}
}
