package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/util"
)

func (m Middleware) RateLimitMiddleware(ctx *gin.Context) {
	if !m.rateLimiter.Enabled {
		ctx.Next()
		return
	}

	allow, retryAfter := m.rateLimiter.Allow(ctx.ClientIP())
	if !allow {
		ctx.Header("Retry-After", retryAfter.String())
		util.ResponseFailed(ctx, http.StatusTooManyRequests, "Rate limit exceeded, retry later", nil, nil)
		ctx.Abort()
		return
	}

	ctx.Next()
}
