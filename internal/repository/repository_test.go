package repository

import (
	"context"
	"errors"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/database"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func newTestStore(t *testing.T) *database.Handle {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenInMemory(name)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store := database.NewHandleFromDB(db)
	t.Cleanup(func() { store.Close() })
	return store
}

func newQuestion(text string, category model.Category, tags ...string) *model.Question {
	return &model.Question{
		Text:       text,
		Category:   category,
		Difficulty: model.Medium,
		Tags:       tags,
		Options: []model.Option{
			{ID: "a", Content: "A", OptionType: model.OptionText, IsCorrect: true},
			{ID: "b", Content: "B", OptionType: model.OptionText},
		},
		Active: true,
	}
}

func TestQuestionListSkipsInactive(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository(newTestStore(t), nil)

	kept := newQuestion("kept", model.Anatomy)
	gone := newQuestion("gone", model.Anatomy)
	for _, q := range []*model.Question{kept, gone} {
		if err := repo.Create(ctx, q); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := repo.SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	list, err := repo.List(ctx, QuestionFilter{Limit: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != kept.ID {
		t.Fatalf("expected only %s, got %+v", kept.ID, list)
	}

	// direct lookups still see the deactivated document
	found, err := repo.FindByID(ctx, gone.ID)
	if err != nil {
		t.Fatalf("find inactive: %v", err)
	}
	if found.Active {
		t.Fatal("expected question to be inactive")
	}
}

func TestQuestionListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewQuestionRepository(newTestStore(t), nil)

	seed := []*model.Question{
		newQuestion("q1", model.Anatomy, "heart", "arteries"),
		newQuestion("q2", model.Anatomy, "brain"),
		newQuestion("q3", model.Physiology, "heart"),
	}
	for _, q := range seed {
		if err := repo.Create(ctx, q); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter QuestionFilter
		want   int
	}{
		{"all", QuestionFilter{Limit: 100}, 3},
		{"category", QuestionFilter{Category: model.Anatomy, Limit: 100}, 2},
		{"tag", QuestionFilter{Tag: "heart", Limit: 100}, 2},
		{"category and tag", QuestionFilter{Category: model.Anatomy, Tag: "heart", Limit: 100}, 1},
		{"difficulty", QuestionFilter{Difficulty: model.Hard, Limit: 100}, 0},
		{"limit", QuestionFilter{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != tt.want {
				t.Errorf("got %d questions, want %d", len(list), tt.want)
			}
		})
	}
}

func TestQuestionSoftDeleteUnknown(t *testing.T) {
	repo := NewQuestionRepository(newTestStore(t), nil)
	err := repo.SoftDelete(context.Background(), "missing")
	if !errors.Is(err, util.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestQuizListVisibility(t *testing.T) {
	ctx := context.Background()
	repo := NewQuizRepository(newTestStore(t))

	public := &model.Quiz{Title: "public", IsPublic: true, Active: true, CreatedBy: "u1"}
	private := &model.Quiz{Title: "private", IsPublic: false, Active: true, CreatedBy: "u1"}
	other := &model.Quiz{Title: "other", IsPublic: true, Active: true, CreatedBy: "u2"}
	deleted := &model.Quiz{Title: "deleted", IsPublic: true, Active: true, CreatedBy: "u1"}
	for _, q := range []*model.Quiz{public, private, other, deleted} {
		q.SetQuestions(nil)
		if err := repo.Create(ctx, q); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.SoftDelete(ctx, deleted.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	tests := []struct {
		name   string
		filter QuizFilter
		want   int
	}{
		{"public only", QuizFilter{OnlyPublic: true, Limit: 100}, 2},
		{"everything active", QuizFilter{Limit: 100}, 3},
		{"owner with private", QuizFilter{CreatedBy: "u1", Limit: 100}, 2},
		{"owner public only", QuizFilter{CreatedBy: "u1", OnlyPublic: true, Limit: 100}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != tt.want {
				t.Errorf("got %d quizzes, want %d", len(list), tt.want)
			}
		})
	}
}

func TestAttemptListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewAttemptRepository(newTestStore(t))

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		a := &model.Attempt{
			UserID:    "u1",
			QuizID:    "quiz",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Status:    model.AttemptCreated,
		}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.ListByUser(ctx, "u1", 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].StartedAt.After(list[i-1].StartedAt) {
			t.Fatalf("attempts not ordered newest first: %v then %v", list[i-1].StartedAt, list[i].StartedAt)
		}
	}

	byQuiz, err := repo.ListByQuiz(ctx, "quiz", 2)
	if err != nil {
		t.Fatalf("list by quiz: %v", err)
	}
	if len(byQuiz) != 2 {
		t.Fatalf("expected limit 2 to be honored, got %d", len(byQuiz))
	}
}

func TestAttemptDeleteIsPhysical(t *testing.T) {
	ctx := context.Background()
	repo := NewAttemptRepository(newTestStore(t))

	a := &model.Attempt{UserID: "u1", QuizID: "q", StartedAt: time.Now(), Status: model.AttemptCreated}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, a.ID); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound on second delete, got %v", err)
	}
}

func createUser(t *testing.T, repo *UserRepository, email string) *model.User {
	t.Helper()
	u := model.NewUser(model.GenerateUUID(), email, "Test", model.Student)
	u.Password = "hash"
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func bumpCorrect(u *model.User) {
	stats := u.Stats.Data()
	stats.CorrectAnswers++
	u.Stats = datatypes.NewJSONType(stats)
}

func TestModifyStatsRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))
	u := createUser(t, repo, "retry@example.com")

	calls := 0
	updated, err := repo.ModifyStats(ctx, u.ID, func(user *model.User) {
		calls++
		if calls == 1 {
			// a concurrent writer lands between read and write
			if err := repo.UpdateFields(ctx, u.ID, map[string]interface{}{"display_name": "Renamed"}); err != nil {
				t.Fatalf("concurrent update: %v", err)
			}
		}
		bumpCorrect(user)
	})
	if err != nil {
		t.Fatalf("modify stats: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, fn called %d times", calls)
	}
	if updated.DisplayName != "Renamed" {
		t.Errorf("retry should work on the fresh document, got display name %q", updated.DisplayName)
	}

	stored, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got := stored.Stats.Data().CorrectAnswers; got != 1 {
		t.Errorf("expected exactly one increment, got %d", got)
	}
}

func TestModifyStatsGivesUp(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestStore(t))
	u := createUser(t, repo, "busy@example.com")

	calls := 0
	_, err := repo.ModifyStats(ctx, u.ID, func(user *model.User) {
		calls++
		if err := repo.UpdateFields(ctx, u.ID, map[string]interface{}{"display_name": "busy"}); err != nil {
			t.Fatalf("concurrent update: %v", err)
		}
		bumpCorrect(user)
	})
	if !errors.Is(err, util.ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
	}
	if calls != maxStatsRetries {
		t.Errorf("expected %d attempts, got %d", maxStatsRetries, calls)
	}

	stored, _ := repo.FindByID(ctx, u.ID)
	if got := stored.Stats.Data().CorrectAnswers; got != 0 {
		t.Errorf("no write should have landed, got %d correct answers", got)
	}
}

func TestModifyStatsUnknownUser(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	_, err := repo.ModifyStats(context.Background(), "nobody", func(*model.User) {})
	if !errors.Is(err, util.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserEmailUnique(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	createUser(t, repo, "dup@example.com")

	u := model.NewUser(model.GenerateUUID(), "dup@example.com", "Other", model.Student)
	if err := repo.Create(context.Background(), u); err == nil {
		t.Fatal("expected unique index violation")
	}
}
