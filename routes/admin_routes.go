package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/controllers"
	"github.com/pothole-patrol/api-go/middleware"
)

// SetupAdminRoutes expects protected to already require a signed-in user.
func SetupAdminRoutes(protected *gin.RouterGroup, adminController *controllers.AdminController) {
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/reports/:id/actions", adminController.Actions)
		admin.POST("/reports/:id/status", adminController.UpdateStatus)
		admin.POST("/reports/:id/notify", adminController.Notify)
	}
}
