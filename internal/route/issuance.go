package route

import (
	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/controller"
	"github.com/openlearn/certforge/internal/middleware"
)

func V1_Issuances(r *gin.RouterGroup, ic *controller.IssuanceController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware)
	{
		v1.GET("/templates/:templateId/issuances", ic.ListByTemplate)
		v1.GET("/templates/:templateId/issuances/download", ic.DownloadZip)
		v1.GET("/students/:studentId/issuances", ic.ListByStudent)
		v1.GET("/issuances/:issuanceId/download", ic.Download)
	}

	mutate := v1.Group("")
	mutate.Use(middleware.ActorMiddleware)
	{
		mutate.POST("/templates/:templateId/issuances", ic.Issue)
		mutate.POST("/templates/:templateId/issuances/bulk", ic.BulkIssue)
		mutate.POST("/issuances/:issuanceId/revoke", ic.Revoke)
		mutate.DELETE("/issuances/:issuanceId", ic.Delete)
	}
}
