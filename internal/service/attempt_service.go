package service

import (
	"context"
	"errors"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/logger"
	"narraprep_backend/pkg/monitoring"
	"narraprep_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CreateAttemptRequest 创建答题记录请求
// swagger:model CreateAttemptRequest
type CreateAttemptRequest struct {
	QuizID      string                 `json:"quiz_id" binding:"required"`
	Answers     []model.QuestionAnswer `json:"answers"`
	ReviewLater []string               `json:"review_later"`
	// UserID is accepted when neither a token nor the user_id query parameter identifies the caller.
	UserID string `json:"user_id"`
}

// UpdateAttemptRequest is a partial update; nil fields are left alone.
// swagger:model UpdateAttemptRequest
type UpdateAttemptRequest struct {
	Answers     []model.QuestionAnswer `json:"answers"`
	ReviewLater *[]string              `json:"review_later"`
	CompletedAt *time.Time             `json:"completed_at"`
}

type AttemptService struct {
	AttemptRepo  *repository.AttemptRepository
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	Stats        *StatsAggregator
	now          func() time.Time
}

func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	stats *StatsAggregator,
) *AttemptService {
	return &AttemptService{
		AttemptRepo:  attemptRepo,
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		Stats:        stats,
		now:          time.Now,
	}
}

func (s *AttemptService) GetAttempt(ctx context.Context, id string) (*model.Attempt, error) {
	return s.AttemptRepo.FindByID(ctx, id)
}

func (s *AttemptService) ListUserAttempts(ctx context.Context, userID string, limit int) ([]model.Attempt, error) {
	return s.AttemptRepo.ListByUser(ctx, userID, limit)
}

func (s *AttemptService) ListQuizAttempts(ctx context.Context, quizID string, limit int) ([]model.Attempt, error) {
	return s.AttemptRepo.ListByQuiz(ctx, quizID, limit)
}

// CreateAttempt starts an attempt now. max_score comes from the quiz's question count, or 0
// when the quiz cannot be resolved. Initial answers are stored as given, unscored.
func (s *AttemptService) CreateAttempt(ctx context.Context, actorID string, req *CreateAttemptRequest) (*model.Attempt, error) {
	maxScore := 0
	quiz, err := s.QuizRepo.FindByID(ctx, req.QuizID)
	switch {
	case err == nil:
		maxScore = quiz.TotalQuestions
	case errors.Is(err, util.ErrQuizNotFound):
		logger.Log.Debug("Attempt references unknown quiz", zap.String("quiz_id", req.QuizID))
	default:
		return nil, err
	}

	attempt := &model.Attempt{
		UserID:      actorID,
		QuizID:      req.QuizID,
		Answers:     nonNilAnswers(req.Answers),
		ReviewLater: uniqueStrings(req.ReviewLater),
		StartedAt:   s.now(),
		MaxScore:    maxScore,
		Status:      model.AttemptCreated,
	}
	if err := s.AttemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	monitoring.AttemptsCreated.Inc()
	return attempt, nil
}

// UpdateAttempt applies answers, review list and completion to an attempt owned by actorID.
// Supplied answers replace the stored list, are scored and feed the owner's statistics.
func (s *AttemptService) UpdateAttempt(ctx context.Context, actorID, id string, req *UpdateAttemptRequest) (*model.Attempt, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AttemptService.UpdateAttempt")
	defer span.End()
	span.SetAttributes(attribute.String("attempt.id", id))

	attempt, err := s.ownedAttempt(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if len(req.Answers) > 0 {
		attempt.Answers = req.Answers
		attempt.Score = Score(req.Answers)
		if attempt.MaxScore > 0 {
			attempt.Percentage = util.Percent(attempt.Score, attempt.MaxScore)
		}
		if attempt.Status == model.AttemptCreated || attempt.Status == "" {
			attempt.Status = model.AttemptInProgress
		}

		outcomes := s.resolveOutcomes(ctx, req.Answers)
		if err := s.Stats.Record(ctx, attempt.UserID, outcomes); err != nil {
			span.RecordError(err)
			return nil, err
		}
		span.SetAttributes(attribute.Int("attempt.score", attempt.Score))
	}

	if req.ReviewLater != nil {
		attempt.ReviewLater = uniqueStrings(*req.ReviewLater)
	}

	completedNow := false
	if req.CompletedAt != nil {
		completedAt := *req.CompletedAt
		attempt.CompletedAt = &completedAt
		attempt.TimeTakenSeconds = ElapsedSeconds(attempt.StartedAt, completedAt)
		completedNow = attempt.Status != model.AttemptCompleted
		attempt.Status = model.AttemptCompleted
	}

	if err := s.AttemptRepo.Update(ctx, attempt); err != nil {
		return nil, err
	}

	if completedNow {
		monitoring.AttemptsCompleted.Inc()
		logger.Log.Info("Attempt completed",
			zap.String("attempt_id", attempt.ID),
			zap.String("user_id", attempt.UserID),
			zap.Int("score", attempt.Score),
			zap.Int("max_score", attempt.MaxScore),
		)
	}
	return attempt, nil
}

func (s *AttemptService) DeleteAttempt(ctx context.Context, actorID, id string) error {
	if _, err := s.ownedAttempt(ctx, actorID, id); err != nil {
		return err
	}
	return s.AttemptRepo.Delete(ctx, id)
}

func (s *AttemptService) ownedAttempt(ctx context.Context, actorID, id string) (*model.Attempt, error) {
	attempt, err := s.AttemptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != actorID {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}

// resolveOutcomes looks up each answered question's category. Questions that cannot be
// resolved are skipped.
func (s *AttemptService) resolveOutcomes(ctx context.Context, answers []model.QuestionAnswer) []AnswerOutcome {
	outcomes := make([]AnswerOutcome, 0, len(answers))
	for _, a := range answers {
		monitoring.ObserveAnswer(a.IsCorrect)

		q, err := s.QuestionRepo.FindByID(ctx, a.QuestionID)
		if err != nil {
			if !errors.Is(err, util.ErrQuestionNotFound) {
				logger.Log.Warn("Question lookup failed while scoring",
					zap.String("question_id", a.QuestionID),
					zap.Error(err),
				)
			}
			continue
		}
		outcomes = append(outcomes, AnswerOutcome{
			QuestionID: q.ID,
			Category:   q.Category,
			Correct:    a.IsCorrect,
		})
	}
	return outcomes
}

func nonNilAnswers(answers []model.QuestionAnswer) []model.QuestionAnswer {
	if answers == nil {
		return []model.QuestionAnswer{}
	}
	return answers
}
