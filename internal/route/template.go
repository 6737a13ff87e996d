package route

import (
	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/controller"
	"github.com/openlearn/certforge/internal/middleware"
)

func V1_Templates(r *gin.RouterGroup, tc *controller.TemplateController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/templates")
	v1.Use(middleware.RateLimitMiddleware)
	{
		v1.GET("", tc.List)
		v1.GET("/:templateId", tc.Get)
		v1.GET("/:templateId/preview", tc.Preview)
	}

	mutate := v1.Group("")
	mutate.Use(middleware.ActorMiddleware)
	{
		mutate.POST("", tc.Create)
		mutate.PATCH("/:templateId", tc.Update)
		mutate.DELETE("/:templateId", tc.Delete)
		mutate.POST("/:templateId/background", tc.UploadBackground)
		mutate.POST("/:templateId/elements", tc.AddElement)
		mutate.PUT("/:templateId/elements/:elementId", tc.UpdateElement)
		mutate.PATCH("/:templateId/elements/:elementId/move", tc.MoveElement)
		mutate.DELETE("/:templateId/elements/:elementId", tc.RemoveElement)
		mutate.POST("/:templateId/activate", tc.Activate)
		mutate.POST("/:templateId/archive", tc.Archive)
	}
}
