package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/controllers"
)

func SetupAuthRoutes(api *gin.RouterGroup, authController *controllers.AuthController, optional, required gin.HandlerFunc) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authController.SignUp)
		auth.POST("/signin", authController.SignIn)
		auth.POST("/anonymous", optional, authController.SignInAnonymous)
		auth.POST("/google", authController.SignInWithGoogle)
		auth.POST("/signout", required, authController.SignOut)
	}
}
