package service

import (
	"context"
	"errors"
	"narraprep_backend/internal/config"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/database"
	"strings"
	"testing"
	"time"
)

type fixture struct {
	users     *UserService
	auth      *AuthService
	questions *QuestionService
	quizzes   *QuizService
	attempts  *AttemptService
	userRepo  *repository.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenInMemory(name)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store := database.NewHandleFromDB(db)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Storage.Type = util.StorageLocal
	cfg.Storage.LocalPath = t.TempDir()

	userRepo := repository.NewUserRepository(store)
	questionRepo := repository.NewQuestionRepository(store, nil)
	quizRepo := repository.NewQuizRepository(store)
	attemptRepo := repository.NewAttemptRepository(store)

	storage := NewStorageService(cfg)
	auth := NewAuthService(userRepo, cfg)
	return &fixture{
		users:     NewUserService(userRepo, auth, storage),
		auth:      auth,
		questions: NewQuestionService(questionRepo, storage),
		quizzes:   NewQuizService(quizRepo),
		attempts:  NewAttemptService(attemptRepo, quizRepo, questionRepo, NewStatsAggregator(userRepo)),
		userRepo:  userRepo,
	}
}

func (f *fixture) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), &CreateUserRequest{
		Email:       email,
		DisplayName: "Student",
		Password:    "secret123",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) createQuestion(t *testing.T, category model.Category) *model.Question {
	t.Helper()
	q, err := f.questions.CreateQuestion(context.Background(), &QuestionRequest{
		Text:     "question",
		Category: category,
		Options: []OptionRequest{
			{Content: "right", IsCorrect: true},
			{Content: "wrong"},
		},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

func TestCreateUserDefaults(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "new@example.com")

	if u.Role != model.Student {
		t.Errorf("default role = %q", u.Role)
	}
	stats := u.Stats.Data()
	if stats.TotalQuestionsAttempted != 0 || stats.Level != 1 {
		t.Errorf("unexpected initial stats %+v", stats)
	}
	settings := u.Settings.Data()
	if settings.DailyGoal != 10 || settings.Theme != "light" {
		t.Errorf("unexpected default settings %+v", settings)
	}
	if len(u.CategoryStats.Data()) != 0 {
		t.Error("category stats should start empty")
	}

	_, err := f.users.CreateUser(context.Background(), &CreateUserRequest{
		Email: "new@example.com", DisplayName: "Again", Password: "secret123",
	})
	if !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "login@example.com")
	ctx := context.Background()

	token, user, err := f.auth.Login(ctx, "login@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != u.ID || user.LastLogin == nil {
		t.Fatalf("unexpected user %+v", user)
	}
	claims, err := util.ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != u.ID || claims.Email != "login@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, _, err := f.auth.Login(ctx, "login@example.com", "wrong"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := f.auth.Login(ctx, "nobody@example.com", "secret123"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "upd@example.com")
	name := "Renamed"

	updated, err := f.users.UpdateUser(context.Background(), u.ID, &UpdateUserRequest{
		DisplayName: &name,
		Settings:    &model.UserSettings{DailyGoal: 25, Theme: "dark"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DisplayName != name {
		t.Errorf("display name = %q", updated.DisplayName)
	}
	if s := updated.Settings.Data(); s.DailyGoal != 25 || s.Theme != "dark" || s.NotificationPreferences == nil {
		t.Errorf("unexpected settings %+v", s)
	}

	if _, err := f.users.UpdateUser(context.Background(), "missing", &UpdateUserRequest{DisplayName: &name}); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestQuestionDefaultsAndOptionIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.questions.CreateQuestion(ctx, &QuestionRequest{
		Text: "defaults",
		Tags: []string{"a", "a", "b"},
		Options: []OptionRequest{
			{ID: "keep", Content: "one", IsCorrect: true},
			{Content: "two"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Category != model.General || q.Difficulty != model.Medium || !q.Active {
		t.Errorf("unexpected defaults %+v", q)
	}
	if len(q.Tags) != 2 {
		t.Errorf("tags should be a set, got %v", q.Tags)
	}
	if q.Options[0].ID != "keep" || q.Options[1].ID == "" {
		t.Fatalf("option ids not assigned: %+v", q.Options)
	}
	if q.Options[1].OptionType != model.OptionText {
		t.Errorf("option type default = %q", q.Options[1].OptionType)
	}

	generated := q.Options[1].ID
	updated, err := f.questions.UpdateQuestion(ctx, q.ID, &QuestionRequest{
		Text:       "edited",
		Category:   model.Anatomy,
		Difficulty: model.Hard,
		Options: []OptionRequest{
			{ID: generated, Content: "two", IsCorrect: true},
			{ID: "keep", Content: "one"},
		},
	})
	if err != nil {
		t.Fatalf("update with same ids: %v", err)
	}
	if updated.Text != "edited" || updated.Options[0].ID != generated || !updated.Options[0].IsCorrect {
		t.Errorf("update not applied: %+v", updated)
	}

	bad := [][]OptionRequest{
		{{ID: "keep", Content: "one"}},
		{{ID: "keep", Content: "one"}, {ID: "other", Content: "two"}},
		{{ID: "keep", Content: "one"}, {ID: "keep", Content: "two"}},
		{{ID: "keep", Content: "one"}, {Content: "two"}},
	}
	for i, options := range bad {
		_, err := f.questions.UpdateQuestion(ctx, q.ID, &QuestionRequest{Text: "x", Options: options})
		if !errors.Is(err, util.ErrInvalidOptions) {
			t.Errorf("case %d: expected ErrInvalidOptions, got %v", i, err)
		}
	}
}

func TestDeletedQuestionHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuestion(t, model.Anatomy)

	if err := f.questions.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.questions.GetQuestion(ctx, q.ID); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	list, err := f.questions.ListQuestions(ctx, repository.QuestionFilter{Limit: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("deleted question listed: %+v", list)
	}
}

func TestQuizOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quiz, err := f.quizzes.CreateQuiz(ctx, "owner", &CreateQuizRequest{
		Title:       "Quiz",
		Description: "d",
		Questions:   []model.QuizQuestionRef{{QuestionID: "q1", Order: 1}, {QuestionID: "q2", Order: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.TotalQuestions != 2 || !quiz.IsPublic || !quiz.Active || quiz.CreatedBy != "owner" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}

	title := "Hijacked"
	if _, err := f.quizzes.UpdateQuiz(ctx, "intruder", quiz.ID, &UpdateQuizRequest{Title: &title}); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := f.quizzes.DeleteQuiz(ctx, "intruder", quiz.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on delete, got %v", err)
	}
	stored, err := f.quizzes.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "Quiz" {
		t.Fatalf("quiz mutated by non-owner: %q", stored.Title)
	}

	refs := []model.QuizQuestionRef{{QuestionID: "q3", Order: 1}}
	updated, err := f.quizzes.UpdateQuiz(ctx, "owner", quiz.ID, &UpdateQuizRequest{Questions: &refs})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.TotalQuestions != 1 {
		t.Errorf("total_questions = %d, want 1", updated.TotalQuestions)
	}
}

func TestQuizDeleteAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quiz, err := f.quizzes.CreateQuiz(ctx, "owner", &CreateQuizRequest{Title: "Quiz", Description: "d"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.TotalQuestions != 0 || quiz.Questions == nil {
		t.Fatalf("empty quiz should have an empty question list, got %+v", quiz.Questions)
	}

	if err := f.quizzes.DeleteQuiz(ctx, "owner", quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.quizzes.GetQuiz(ctx, quiz.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("expected deleted quiz to be hidden, got %v", err)
	}

	active := true
	if _, err := f.quizzes.UpdateQuiz(ctx, "owner", quiz.ID, &UpdateQuizRequest{Active: &active}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := f.quizzes.GetQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("restored quiz should be visible: %v", err)
	}
}

func TestAttemptScoringScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.createUser(t, "scenario@example.com")
	q1 := f.createQuestion(t, model.Anatomy)
	q2 := f.createQuestion(t, model.Anatomy)
	q3 := f.createQuestion(t, model.Physiology)

	quiz, err := f.quizzes.CreateQuiz(ctx, user.ID, &CreateQuizRequest{
		Title:       "Scenario",
		Description: "three questions",
		Questions: []model.QuizQuestionRef{
			{QuestionID: q1.ID, Order: 1},
			{QuestionID: q2.ID, Order: 2},
			{QuestionID: q3.ID, Order: 3},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.attempts.now = func() time.Time { return started }

	attempt, err := f.attempts.CreateAttempt(ctx, user.ID, &CreateAttemptRequest{QuizID: quiz.ID})
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if attempt.MaxScore != 3 || attempt.Score != 0 || attempt.Status != model.AttemptCreated {
		t.Fatalf("unexpected new attempt %+v", attempt)
	}

	answers := []model.QuestionAnswer{
		{QuestionID: q1.ID, SelectedOptionID: q1.Options[0].ID, IsCorrect: true},
		{QuestionID: q2.ID, SelectedOptionID: q2.Options[1].ID, IsCorrect: false},
		{QuestionID: q3.ID, SelectedOptionID: q3.Options[0].ID, IsCorrect: true},
	}
	completed := started.Add(95*time.Second + 400*time.Millisecond)
	updated, err := f.attempts.UpdateAttempt(ctx, user.ID, attempt.ID, &UpdateAttemptRequest{
		Answers:     answers,
		CompletedAt: &completed,
	})
	if err != nil {
		t.Fatalf("update attempt: %v", err)
	}
	if updated.Score != 2 {
		t.Errorf("score = %d, want 2", updated.Score)
	}
	if updated.Percentage != 66.67 {
		t.Errorf("percentage = %v, want 66.67", updated.Percentage)
	}
	if updated.TimeTakenSeconds != 95 {
		t.Errorf("time taken = %d, want 95", updated.TimeTakenSeconds)
	}
	if updated.Status != model.AttemptCompleted {
		t.Errorf("status = %q", updated.Status)
	}

	stored, err := f.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	stats := stored.Stats.Data()
	if stats.TotalQuestionsAttempted != 3 || stats.CorrectAnswers != 2 || stats.Accuracy != 66.67 {
		t.Errorf("unexpected user stats %+v", stats)
	}
	buckets := stored.CategoryStats.Data()
	if b := buckets[string(model.Anatomy)]; b.Attempted != 2 || b.Correct != 1 || b.Accuracy != 50 {
		t.Errorf("unexpected anatomy bucket %+v", b)
	}
	if b := buckets[string(model.Physiology)]; b.Attempted != 1 || b.Correct != 1 {
		t.Errorf("unexpected physiology bucket %+v", b)
	}
}

func TestAttemptUnknownQuizAndQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "unknown@example.com")

	attempt, err := f.attempts.CreateAttempt(ctx, user.ID, &CreateAttemptRequest{
		QuizID:      "missing-quiz",
		ReviewLater: []string{"q1"},
	})
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if attempt.MaxScore != 0 {
		t.Fatalf("max score = %d, want 0", attempt.MaxScore)
	}
	if len(attempt.ReviewLater) != 1 || attempt.Answers == nil {
		t.Fatalf("initial lists not stored: %+v", attempt)
	}

	updated, err := f.attempts.UpdateAttempt(ctx, user.ID, attempt.ID, &UpdateAttemptRequest{
		Answers: []model.QuestionAnswer{{QuestionID: "ghost", SelectedOptionID: "x", IsCorrect: true}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Score != 1 || updated.Percentage != 0 {
		t.Errorf("score %d / percentage %v; percentage must stay unchanged without max score", updated.Score, updated.Percentage)
	}
	if updated.Status != model.AttemptInProgress {
		t.Errorf("status = %q, want in_progress", updated.Status)
	}

	stored, _ := f.userRepo.FindByID(ctx, user.ID)
	if n := stored.Stats.Data().TotalQuestionsAttempted; n != 0 {
		t.Errorf("unresolvable questions must not count, got %d", n)
	}
}

func TestAttemptOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner@example.com")

	attempt, err := f.attempts.CreateAttempt(ctx, owner.ID, &CreateAttemptRequest{QuizID: "q"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	review := []string{"x"}
	if _, err := f.attempts.UpdateAttempt(ctx, "intruder", attempt.ID, &UpdateAttemptRequest{ReviewLater: &review}); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := f.attempts.DeleteAttempt(ctx, "intruder", attempt.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on delete, got %v", err)
	}

	stored, err := f.attempts.GetAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.ReviewLater) != 0 {
		t.Fatalf("attempt mutated by non-owner: %+v", stored.ReviewLater)
	}

	if err := f.attempts.DeleteAttempt(ctx, owner.ID, attempt.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := f.attempts.GetAttempt(ctx, attempt.ID); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}
