package middleware

import (
	"narraprep_backend/internal/config"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TryAuthMiddleware(cfg))
	r.GET("/whoami", func(c *gin.Context) {
		id, err := util.ActorID(c)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusOK, id)
	})
	return r
}

func TestTryAuthMiddleware(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "secret"
	r := newRouter(cfg)

	u := &model.User{DocumentBase: model.DocumentBase{ID: "u1"}, Role: model.Student}
	token, err := util.GenerateJWT(u, cfg.JWT.Secret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		name   string
		path   string
		header string
		code   int
		body   string
	}{
		{"valid token", "/whoami", "Bearer " + token, http.StatusOK, "u1"},
		{"no token falls back to query", "/whoami?user_id=u2", "", http.StatusOK, "u2"},
		{"no identity", "/whoami", "", http.StatusBadRequest, ""},
		{"bad token", "/whoami?user_id=u2", "Bearer garbage", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}
