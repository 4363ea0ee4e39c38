package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/controllers"
)

func SetupReportRoutes(api *gin.RouterGroup, reportController *controllers.ReportController, liveController *controllers.LiveController, optional gin.HandlerFunc) {
	reports := api.Group("/reports")
	{
		reports.POST("", optional, reportController.Submit)
		reports.GET("", reportController.List)
		reports.GET("/recent", reportController.Recent)
		reports.GET("/map", reportController.Map)
		reports.GET("/live", liveController.Stream)
		reports.GET("/:id", reportController.Get)
	}
}
