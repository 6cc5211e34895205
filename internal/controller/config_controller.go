package controller

import (
	"narraprep_backend/internal/config"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// ConfigController serves the frontend web config. It is swapped on config reload.
type ConfigController struct {
	mu        sync.RWMutex
	webConfig map[string]interface{}
}

func NewConfigController(cfg *config.Config) *ConfigController {
	c := &ConfigController{}
	c.Reload(cfg)
	return c
}

func (c *ConfigController) Reload(cfg *config.Config) {
	webConfig := cfg.Firebase.WebConfig
	if webConfig == nil {
		webConfig = map[string]interface{}{}
	}
	c.mu.Lock()
	c.webConfig = webConfig
	c.mu.Unlock()
}

// FirebaseConfig godoc
// @Summary Frontend web config
// @Description Returned verbatim, without the response envelope
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/config/firebase [get]
func (c *ConfigController) FirebaseConfig(ctx *gin.Context) {
	c.mu.RLock()
	webConfig := c.webConfig
	c.mu.RUnlock()
	ctx.JSON(http.StatusOK, webConfig)
}
