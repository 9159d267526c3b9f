package http

import "github.com/gin-gonic/gin"

// InitRoutes wires the API surface onto a fresh gin engine.
func InitRoutes(recordHandler *RecordHandler, opsHandler *OpsHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		records := api.Group("/records")
		{
			records.POST("", recordHandler.CreateRecord)
			records.GET("/overdue", recordHandler.GetOverdue)
			records.GET("/pending", recordHandler.GetPending)
			records.PATCH("/:id", recordHandler.UpdateRecord)
			records.POST("/:id/submit", recordHandler.SubmitRecord)
			records.GET("/:id/progress", recordHandler.GetProgress)
		}

		api.GET("/queue/stats", opsHandler.GetQueueStats)
		api.GET("/queue/failed", opsHandler.GetFailedJobs)
		api.GET("/notifications/recent", opsHandler.GetRecentNotifications)
	}

	router.GET("/health", opsHandler.Health)

	return router
}
