package controller

import (
	"context"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/database"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 3 * time.Second

type HealthController struct {
	Store       *database.Handle
	Cache       *repository.QuestionCache
	ServiceName string
}

func NewHealthController(store *database.Handle, cache *repository.QuestionCache, serviceName string) *HealthController {
	return &HealthController{Store: store, Cache: cache, ServiceName: serviceName}
}

// @Summary Liveness
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/v1/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"status":  "healthy",
		"service": c.ServiceName,
	})
}

// @Summary Backend readiness
// @Description Pings the document store and, when configured, the question cache
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/v1/health/firebase [get]
func (c *HealthController) BackendHealth(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()

	healthy := true
	components := gin.H{}

	if err := c.Store.Ping(pingCtx); err != nil {
		healthy = false
		components["store"] = gin.H{"status": "down", "detail": err.Error()}
	} else {
		components["store"] = gin.H{"status": "up"}
	}

	switch {
	case !c.Cache.Enabled():
		components["cache"] = gin.H{"status": "disabled"}
	case c.Cache.Ping(pingCtx) != nil:
		// the cache is optional; report it without failing readiness
		components["cache"] = gin.H{"status": "down"}
	default:
		components["cache"] = gin.H{"status": "up"}
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "degraded",
			Data:    gin.H{"status": "unhealthy", "components": components},
		})
		return
	}
	util.Success(ctx, gin.H{"status": "healthy", "components": components})
}
