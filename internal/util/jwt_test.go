package util

import (
	"narraprep_backend/internal/model"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestJWTRoundTrip(t *testing.T) {
	u := &model.User{DocumentBase: model.DocumentBase{ID: "u1"}, Email: "a@example.com", Role: model.Admin}

	token, err := GenerateJWT(u, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != model.Admin {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Error("token signed with another secret must be rejected")
	}

	expired, _ := GenerateJWT(u, "secret", -time.Minute)
	if _, err := ParseJWT(expired, "secret"); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestActorID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?user_id=from-query", nil)
	if id, err := ActorID(c); err != nil || id != "from-query" {
		t.Errorf("query fallback: got %q, %v", id, err)
	}

	c.Set(ContextUserKey, &Claims{UserID: "from-token"})
	if id, _ := ActorID(c); id != "from-token" {
		t.Errorf("token should win over the query, got %q", id)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	if _, err := ActorID(c); err != ErrActorRequired {
		t.Errorf("expected ErrActorRequired, got %v", err)
	}
}
