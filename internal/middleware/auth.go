package middleware

import (
	"narraprep_backend/internal/config"
	"narraprep_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// TryAuthMiddleware attaches claims when a bearer token is present; a malformed or expired
// token is rejected. Requests without a token pass through and handlers fall back to the
// user_id parameter.
func TryAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
			if err != nil {
				util.Unauthorized(c)
				c.Abort()
				return
			}
			c.Set(util.ContextUserKey, claims)
		}
		c.Next()
	}
}
