package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// healthHandler reports liveness for load balancer checks.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "MediSafe API is running"})
}

// SetupRootRoute sets up the root and health routes for the application
func SetupRootRoute(router *gin.Engine) {
	router.GET("/", healthHandler)
	router.GET("/health", healthHandler)
}
