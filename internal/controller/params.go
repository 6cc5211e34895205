package controller

import (
	"narraprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// queryLimit reads ?limit=, writing a 400 and returning false when it is out of range.
func queryLimit(ctx *gin.Context) (int, bool) {
	limit, err := util.ParseLimit(ctx.Query("limit"))
	if err != nil {
		util.HandleError(ctx, err)
		return 0, false
	}
	return limit, true
}

// singleTag returns the tag filter. Only a single ?tags= value filters; several are ignored.
func singleTag(ctx *gin.Context) string {
	tags := ctx.QueryArray("tags")
	if len(tags) == 1 {
		return tags[0]
	}
	return ""
}

func actorID(ctx *gin.Context) (string, bool) {
	id, err := util.ActorID(ctx)
	if err != nil {
		util.HandleError(ctx, err)
		return "", false
	}
	return id, true
}
