package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/util"
)

const ActorHeader = "X-Actor-Id"

const actorContextKey = "actor"

// ActorMiddleware reads the acting administrator's id from the request
// header. Authentication itself lives upstream, issuance and revocation just
// need the actor recorded with every action.
func (m Middleware) ActorMiddleware(ctx *gin.Context) {
	actor := ctx.GetHeader(ActorHeader)
	if actor == "" {
		m.app.Logger.Debugf("Missing %s header", ActorHeader)
		util.ResponseFailed(ctx, http.StatusBadRequest, "", util.GenerateErrorMessages(errors.New("missing actor header"), "actor"), nil)
		ctx.Abort()
		return
	}

	ctx.Set(actorContextKey, actor)
	ctx.Next()
}

func GetActor(ctx *gin.Context) string {
	return ctx.GetString(actorContextKey)
}
