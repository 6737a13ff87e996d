package route

import (
	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/controller"
)

func V1_Index(r *gin.RouterGroup, ic *controller.IndexController) {
	v1 := r.Group("/v1")
	{
		v1.GET("", ic.Index)
	}
}
