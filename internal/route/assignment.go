package route

import (
	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/controller"
	"github.com/openlearn/certforge/internal/middleware"
)

func V1_Assignments(r *gin.RouterGroup, ac *controller.AssignmentController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/assignments")
	v1.Use(middleware.RateLimitMiddleware)
	{
		v1.GET("", ac.ListForTarget)
	}

	mutate := v1.Group("")
	mutate.Use(middleware.ActorMiddleware)
	{
		mutate.POST("", ac.Create)
		mutate.POST("/:assignmentId/default", ac.SetDefault)
		mutate.DELETE("/:assignmentId", ac.Delete)
	}
}
