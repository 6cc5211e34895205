package app

import (
	"bytes"
	"encoding/json"
	"narraprep_backend/internal/config"
	"narraprep_backend/internal/model"
	"narraprep_backend/pkg/database"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenInMemory(name)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store := database.NewHandleFromDB(db)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Server.Name = "narraprep-test"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Firebase.WebConfig = map[string]interface{}{
		"apiKey":    "abc",
		"projectId": "narraprep-dev",
	}

	return newApp(cfg, store, nil)
}

func do(t *testing.T, a *App, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func createUser(t *testing.T, a *App, email string) model.User {
	t.Helper()
	w, env := do(t, a, http.MethodPost, "/api/v1/users", gin.H{
		"email":        email,
		"display_name": "Student",
		"password":     "secret123",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create user: %d %s", w.Code, w.Body.String())
	}
	var u model.User
	decode(t, env.Data, &u)
	return u
}

func createQuestion(t *testing.T, a *App, category string) model.Question {
	t.Helper()
	w, env := do(t, a, http.MethodPost, "/api/v1/questions", gin.H{
		"text":     "Which one?",
		"category": category,
		"options": []gin.H{
			{"content": "right", "is_correct": true},
			{"content": "wrong"},
		},
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create question: %d %s", w.Code, w.Body.String())
	}
	var q model.Question
	decode(t, env.Data, &q)
	return q
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	w, env := do(t, a, http.MethodGet, "/api/v1/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	var body map[string]string
	decode(t, env.Data, &body)
	if body["status"] != "healthy" || body["service"] != "narraprep-test" {
		t.Errorf("unexpected health body %v", body)
	}

	w, env = do(t, a, http.MethodGet, "/api/v1/health/firebase", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("backend health: %d %s", w.Code, w.Body.String())
	}
	var ready struct {
		Status     string                       `json:"status"`
		Components map[string]map[string]string `json:"components"`
	}
	decode(t, env.Data, &ready)
	if ready.Components["store"]["status"] != "up" || ready.Components["cache"]["status"] != "disabled" {
		t.Errorf("unexpected components %v", ready.Components)
	}
}

func TestBackendHealthStoreDown(t *testing.T) {
	a := newTestApp(t)
	a.Store.Close()

	w, _ := do(t, a, http.MethodGet, "/api/v1/health/firebase", nil, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with the store closed, got %d", w.Code)
	}
}

func TestFirebaseConfigVerbatimAndReload(t *testing.T) {
	a := newTestApp(t)

	w, _ := do(t, a, http.MethodGet, "/api/v1/config/firebase", nil, "")
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["projectId"] != "narraprep-dev" || len(body) != 2 {
		t.Fatalf("config should be returned without an envelope, got %v", body)
	}

	next := *a.Config
	next.Firebase.WebConfig = map[string]interface{}{"projectId": "narraprep-prod"}
	a.ReloadConfig(&next)

	w, _ = do(t, a, http.MethodGet, "/api/v1/config/firebase", nil, "")
	body = nil
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["projectId"] != "narraprep-prod" {
		t.Fatalf("reload not applied, got %v", body)
	}
}

func TestCORSOrigins(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allowed origin not echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin must not be allowed, got %q", got)
	}
}

func TestLoginAndCurrentUser(t *testing.T) {
	a := newTestApp(t)
	u := createUser(t, a, "me@example.com")

	w, env := do(t, a, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "me@example.com", "password": "secret123",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	decode(t, env.Data, &login)
	if login.Token == "" || login.User.ID != u.ID {
		t.Fatalf("unexpected login response %+v", login)
	}

	w, env = do(t, a, http.MethodGet, "/api/v1/users/me", nil, login.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	var me model.User
	decode(t, env.Data, &me)
	if me.Email != "me@example.com" {
		t.Errorf("unexpected current user %+v", me)
	}

	w, _ = do(t, a, http.MethodGet, "/api/v1/users/me", nil, "not-a-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: expected 401, got %d", w.Code)
	}

	w, _ = do(t, a, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "me@example.com", "password": "wrong-password",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: expected 401, got %d", w.Code)
	}

	w, _ = do(t, a, http.MethodPost, "/api/v1/users", gin.H{
		"email": "me@example.com", "display_name": "Dup", "password": "secret123",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate email: expected 400, got %d", w.Code)
	}
}

func TestListLimitValidation(t *testing.T) {
	a := newTestApp(t)

	for _, path := range []string{
		"/api/v1/questions?limit=0",
		"/api/v1/questions?limit=101",
		"/api/v1/quizzes?limit=abc",
		"/api/v1/attempts/user/u1?limit=-1",
	} {
		w, _ := do(t, a, http.MethodGet, path, nil, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}

	w, env := do(t, a, http.MethodGet, "/api/v1/questions?limit=100", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("limit 100: %d", w.Code)
	}
	if string(env.Data) != "[]" {
		t.Errorf("empty list should serialize as [], got %s", env.Data)
	}

	w, _ = do(t, a, http.MethodGet, "/api/v1/questions?category=cardiology", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown category: expected 400, got %d", w.Code)
	}
}

func TestQuestionLifecycle(t *testing.T) {
	a := newTestApp(t)
	q := createQuestion(t, a, "anatomy")
	other := createQuestion(t, a, "physiology")

	w, env := do(t, a, http.MethodGet, "/api/v1/questions?category=anatomy", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var list []model.Question
	decode(t, env.Data, &list)
	if len(list) != 1 || list[0].ID != q.ID {
		t.Fatalf("category filter: %+v", list)
	}

	w, _ = do(t, a, http.MethodPut, "/api/v1/questions/"+q.ID, gin.H{
		"text":    "changed",
		"options": []gin.H{{"id": "new-id", "content": "x"}, {"id": q.Options[1].ID, "content": "y"}},
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("foreign option id: expected 400, got %d", w.Code)
	}

	w, env = do(t, a, http.MethodDelete, "/api/v1/questions/"+q.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	var msg map[string]string
	decode(t, env.Data, &msg)
	if msg["message"] != "Question deleted successfully" {
		t.Errorf("unexpected delete body %v", msg)
	}

	w, _ = do(t, a, http.MethodGet, "/api/v1/questions/"+q.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted question: expected 404, got %d", w.Code)
	}

	w, env = do(t, a, http.MethodGet, "/api/v1/questions", nil, "")
	list = nil
	decode(t, env.Data, &list)
	if len(list) != 1 || list[0].ID != other.ID {
		t.Errorf("deleted question still listed: %+v", list)
	}
}

func TestQuizOwnershipOverHTTP(t *testing.T) {
	a := newTestApp(t)

	body := gin.H{"title": "Mine", "description": "d", "questions": []gin.H{}}
	w, _ := do(t, a, http.MethodPost, "/api/v1/quizzes", body, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("quiz without actor: expected 400, got %d", w.Code)
	}

	w, env := do(t, a, http.MethodPost, "/api/v1/quizzes?user_id=owner", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create quiz: %d %s", w.Code, w.Body.String())
	}
	var quiz model.Quiz
	decode(t, env.Data, &quiz)

	w, _ = do(t, a, http.MethodPut, "/api/v1/quizzes/"+quiz.ID+"?user_id=intruder", gin.H{"title": "Theirs"}, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: expected 403, got %d", w.Code)
	}

	w, _ = do(t, a, http.MethodDelete, "/api/v1/quizzes/"+quiz.ID+"?user_id=owner", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: %d", w.Code)
	}
	w, _ = do(t, a, http.MethodGet, "/api/v1/quizzes/"+quiz.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted quiz: expected 404, got %d", w.Code)
	}
}

func TestAttemptFlowOverHTTP(t *testing.T) {
	a := newTestApp(t)
	user := createUser(t, a, "flow@example.com")
	q1 := createQuestion(t, a, "anatomy")
	q2 := createQuestion(t, a, "anatomy")
	q3 := createQuestion(t, a, "pathology")

	w, env := do(t, a, http.MethodPost, "/api/v1/quizzes?user_id="+user.ID, gin.H{
		"title":       "Flow",
		"description": "three",
		"questions": []gin.H{
			{"question_id": q1.ID, "order": 1},
			{"question_id": q2.ID, "order": 2},
			{"question_id": q3.ID, "order": 3},
		},
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create quiz: %d %s", w.Code, w.Body.String())
	}
	var quiz model.Quiz
	decode(t, env.Data, &quiz)

	// actor taken from the body when no token or query parameter is present
	w, env = do(t, a, http.MethodPost, "/api/v1/attempts", gin.H{
		"quiz_id": quiz.ID,
		"user_id": user.ID,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create attempt: %d %s", w.Code, w.Body.String())
	}
	var attempt model.Attempt
	decode(t, env.Data, &attempt)
	if attempt.MaxScore != 3 || attempt.UserID != user.ID {
		t.Fatalf("unexpected attempt %+v", attempt)
	}

	completed := attempt.StartedAt.Add(42 * time.Second)
	update := gin.H{
		"answers": []gin.H{
			{"question_id": q1.ID, "selected_option_id": q1.Options[0].ID, "is_correct": true},
			{"question_id": q2.ID, "selected_option_id": q2.Options[0].ID, "is_correct": true},
			{"question_id": q3.ID, "selected_option_id": q3.Options[1].ID, "is_correct": false},
		},
		"completed_at": completed,
	}

	w, _ = do(t, a, http.MethodPut, "/api/v1/attempts/"+attempt.ID+"?user_id=someone-else", update, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: expected 403, got %d", w.Code)
	}

	w, env = do(t, a, http.MethodPut, "/api/v1/attempts/"+attempt.ID+"?user_id="+user.ID, update, "")
	if w.Code != http.StatusOK {
		t.Fatalf("update attempt: %d %s", w.Code, w.Body.String())
	}
	decode(t, env.Data, &attempt)
	if attempt.Score != 2 || attempt.Percentage != 66.67 || attempt.TimeTakenSeconds != 42 {
		t.Errorf("unexpected scoring %+v", attempt)
	}
	if attempt.Status != model.AttemptCompleted {
		t.Errorf("status = %q", attempt.Status)
	}

	w, env = do(t, a, http.MethodGet, "/api/v1/users/"+user.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get user: %d", w.Code)
	}
	var stored model.User
	decode(t, env.Data, &stored)
	if s := stored.Stats.Data(); s.TotalQuestionsAttempted != 3 || s.CorrectAnswers != 2 {
		t.Errorf("unexpected stats %+v", s)
	}
	if b := stored.CategoryStats.Data()["anatomy"]; b.Attempted != 2 || b.Accuracy != 100 {
		t.Errorf("unexpected anatomy bucket %+v", b)
	}

	w, env = do(t, a, http.MethodGet, "/api/v1/attempts/quiz/"+quiz.ID, nil, "")
	var attempts []model.Attempt
	decode(t, env.Data, &attempts)
	if len(attempts) != 1 {
		t.Errorf("expected one attempt for the quiz, got %d", len(attempts))
	}

	w, _ = do(t, a, http.MethodDelete, "/api/v1/attempts/"+attempt.ID+"?user_id="+user.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete attempt: %d", w.Code)
	}
	w, _ = do(t, a, http.MethodGet, "/api/v1/attempts/"+attempt.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("deleted attempt: expected 404, got %d", w.Code)
	}
}
