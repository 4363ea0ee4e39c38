package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/controllers"
)

func SetupValidationRoutes(api *gin.RouterGroup, validationController *controllers.ValidationController) {
	auth := api.Group("/auth")
	{
		auth.GET("/email/:email", validationController.ValidateEmail)
	}
}
