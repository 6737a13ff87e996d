package route

import (
	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/controller"
	"github.com/openlearn/certforge/internal/middleware"
)

// V1_Verify is public, no actor header required. The rate limiter still
// applies since the endpoint sits behind QR codes printed on certificates.
func V1_Verify(r *gin.RouterGroup, vc *controller.VerifyController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/verify")
	v1.Use(middleware.RateLimitMiddleware)
	{
		v1.GET("/:certificateNumber", vc.Verify)
	}
}
