package controllers

import (
	"medisafe/handlers"
	"medisafe/middlewares"
	"medisafe/repositories"

	"github.com/gin-gonic/gin"
)

// SetupAccountRoutes registers the account lifecycle and role conversion
// endpoints. Everything here is staff-facing: lifecycle and conversion need
// admin, permanent deletion and deleted listings need super admin.
func SetupAccountRoutes(
	router *gin.Engine,
	userRepo repositories.UserRepository,
	accountHandler *handlers.AccountHandler,
	roleHandler *handlers.RoleHandler,
) {
	// Static paths stay out of the /:user_id subtree so the router never
	// sees a wildcard conflict.
	admin := router.Group("/admin").Use(middlewares.AuthMiddleware(userRepo), middlewares.RequireAdmin())
	{
		admin.GET("/overview", accountHandler.Overview)
		admin.GET("/deleted-accounts", middlewares.RequireSuperAdmin(), accountHandler.ListDeletedAccounts)
	}

	accounts := router.Group("/accounts").Use(middlewares.AuthMiddleware(userRepo), middlewares.RequireAdmin())
	{
		accounts.GET("", accountHandler.ListAccounts)
		accounts.GET("/:user_id", accountHandler.GetAccount)

		accounts.DELETE("/:user_id", accountHandler.SoftDelete)
		accounts.POST("/:user_id/restore", accountHandler.Restore)
		accounts.DELETE("/:user_id/permanent", middlewares.RequireSuperAdmin(), accountHandler.PermanentDelete)
		accounts.POST("/:user_id/activate", accountHandler.Activate)
		accounts.POST("/:user_id/deactivate", accountHandler.Deactivate)

		accounts.POST("/:user_id/convert/team", roleHandler.ConvertToTeamMember)
		accounts.POST("/:user_id/convert/doctor", roleHandler.ConvertToDoctor)
		accounts.POST("/:user_id/convert/patient", roleHandler.ConvertToPatient)
		accounts.POST("/:user_id/delist-doctor", roleHandler.DelistDoctor)
	}
}
