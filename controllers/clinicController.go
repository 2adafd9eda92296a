package controllers

import (
	"medisafe/handlers"
	"medisafe/middlewares"
	"medisafe/repositories"

	"github.com/gin-gonic/gin"
)

// SetupClinicRoutes registers the doctor directory, profile, notification
// and dashboard endpoints available to any authenticated account.
func SetupClinicRoutes(
	router *gin.Engine,
	userRepo repositories.UserRepository,
	doctorHandler *handlers.DoctorHandler,
	profileHandler *handlers.ProfileHandler,
	notificationHandler *handlers.NotificationHandler,
) {
	authed := router.Group("/").Use(middlewares.AuthMiddleware(userRepo))
	{
		authed.GET("/doctors", doctorHandler.List)
		authed.GET("/doctors/:doctor_id", doctorHandler.Detail)
		authed.PUT("/doctors/:doctor_id", middlewares.RequireAdmin(), doctorHandler.UpdateProfile)

		authed.GET("/profile", profileHandler.Overview)
		authed.PUT("/profile", profileHandler.Update)
		authed.POST("/profile/photo", profileHandler.UploadPhoto)
		authed.GET("/profile/dashboard", profileHandler.Dashboard)
		authed.GET("/profiles/:user_id", middlewares.RequireAdmin(), profileHandler.OverviewFor)

		authed.GET("/notifications", notificationHandler.List)
		authed.POST("/notifications/:notification_id/read", notificationHandler.MarkRead)
		authed.GET("/notifications/:notification_id/file", notificationHandler.DownloadAttachment)
		authed.POST("/admin-messages", notificationHandler.MessageAdmins)
		authed.GET("/password-reset-requests/:user_id", middlewares.RequireAdmin(), notificationHandler.ListResetRequests)
	}
}
