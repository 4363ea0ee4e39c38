package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pothole-patrol/api-go/backend"
	"github.com/pothole-patrol/api-go/controllers"
	"github.com/pothole-patrol/api-go/middleware"
	"github.com/pothole-patrol/api-go/realtime"
	"github.com/pothole-patrol/api-go/reports"
	"github.com/pothole-patrol/api-go/session"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP API is built from.
type Dependencies struct {
	Backend  *backend.Backend
	Sessions *session.Manager
	Hub      *realtime.Hub
	// Publisher receives report events; defaults to Hub.
	Publisher reports.Publisher
	Log       *zap.Logger
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = deps.Hub
	}

	// Initialize controllers
	authController := controllers.NewAuthController(deps.Sessions, deps.Log)
	validationController := controllers.NewValidationController(deps.Sessions, deps.Log)
	reportController := controllers.NewReportController(
		reports.NewSubmitter(deps.Backend, publisher, deps.Log),
		reports.NewLister(deps.Backend.Reports),
		deps.Log,
	)
	adminController := controllers.NewAdminController(
		reports.NewLifecycle(deps.Backend.Reports, publisher, deps.Log),
		deps.Log,
	)
	liveController := controllers.NewLiveController(deps.Hub, deps.Log)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if objects, ok := deps.Backend.Storage.(*backend.Memory); ok {
		r.GET(backend.MemoryObjectPrefix+":key", controllers.NewObjectController(objects).Get)
	}

	api := r.Group("/api")
	optional := middleware.OptionalAuthMiddleware(deps.Sessions)
	required := middleware.AuthMiddleware(deps.Sessions)

	SetupAuthRoutes(api, authController, optional, required)
	SetupValidationRoutes(api, validationController)
	SetupReportRoutes(api, reportController, liveController, optional)

	// Protected routes
	protected := api.Group("")
	protected.Use(required)
	{
		protected.GET("/profile", authController.GetProfile)
		SetupAdminRoutes(protected, adminController)
	}
}
