package service

import (
	"context"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/logger"

	"go.uber.org/zap"
)

// CreateQuizRequest 创建测验请求
// swagger:model CreateQuizRequest
type CreateQuizRequest struct {
	Title            string                  `json:"title" binding:"required,max=255"`
	Description      string                  `json:"description" binding:"required"`
	Category         *model.Category         `json:"category" binding:"omitempty,oneof=anatomy physiology pathology pharmacology microbiology general"`
	Difficulty       *model.Difficulty       `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	TimeLimitMinutes *int                    `json:"time_limit_minutes" binding:"omitempty,min=1"`
	Tags             []string                `json:"tags"`
	IsPublic         *bool                   `json:"is_public"`
	Questions        []model.QuizQuestionRef `json:"questions" binding:"required,dive"`
}

// UpdateQuizRequest is a partial update; nil fields are left alone.
// swagger:model UpdateQuizRequest
type UpdateQuizRequest struct {
	Title            *string                  `json:"title" binding:"omitempty,max=255"`
	Description      *string                  `json:"description"`
	Category         *model.Category          `json:"category" binding:"omitempty,oneof=anatomy physiology pathology pharmacology microbiology general"`
	Difficulty       *model.Difficulty        `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	TimeLimitMinutes *int                     `json:"time_limit_minutes" binding:"omitempty,min=1"`
	Tags             *[]string                `json:"tags"`
	IsPublic         *bool                    `json:"is_public"`
	Questions        *[]model.QuizQuestionRef `json:"questions"`
	Active           *bool                    `json:"active"`
}

type QuizService struct {
	QuizRepo *repository.QuizRepository
}

func NewQuizService(quizRepo *repository.QuizRepository) *QuizService {
	return &QuizService{QuizRepo: quizRepo}
}

func (s *QuizService) ListQuizzes(ctx context.Context, filter repository.QuizFilter) ([]model.Quiz, error) {
	return s.QuizRepo.List(ctx, filter)
}

// ListUserQuizzes lists quizzes created by userID; private ones only when includePrivate.
func (s *QuizService) ListUserQuizzes(ctx context.Context, userID string, includePrivate bool, limit int) ([]model.Quiz, error) {
	return s.QuizRepo.List(ctx, repository.QuizFilter{
		CreatedBy:  userID,
		OnlyPublic: !includePrivate,
		Limit:      limit,
	})
}

// GetQuiz hides soft-deleted quizzes.
func (s *QuizService) GetQuiz(ctx context.Context, id string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quiz.Active {
		return nil, util.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, actorID string, req *CreateQuizRequest) (*model.Quiz, error) {
	quiz := &model.Quiz{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Difficulty:       req.Difficulty,
		TimeLimitMinutes: req.TimeLimitMinutes,
		Tags:             uniqueStrings(req.Tags),
		IsPublic:         true,
		Active:           true,
		CreatedBy:        actorID,
	}
	if req.IsPublic != nil {
		quiz.IsPublic = *req.IsPublic
	}
	quiz.SetQuestions(req.Questions)

	if err := s.QuizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}
	logger.Log.Info("Quiz created",
		zap.String("quiz_id", quiz.ID),
		zap.String("created_by", actorID),
		zap.Int("total_questions", quiz.TotalQuestions),
	)
	return quiz, nil
}

// UpdateQuiz applies a partial update. Only the creator may update; setting active=true
// restores a deleted quiz.
func (s *QuizService) UpdateQuiz(ctx context.Context, actorID, id string, req *UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.Category != nil {
		quiz.Category = req.Category
	}
	if req.Difficulty != nil {
		quiz.Difficulty = req.Difficulty
	}
	if req.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.Tags != nil {
		quiz.Tags = uniqueStrings(*req.Tags)
	}
	if req.IsPublic != nil {
		quiz.IsPublic = *req.IsPublic
	}
	if req.Questions != nil {
		quiz.SetQuestions(*req.Questions)
	}
	if req.Active != nil {
		quiz.Active = *req.Active
	}

	if err := s.QuizRepo.Update(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(ctx context.Context, actorID, id string) error {
	if _, err := s.ownedQuiz(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.QuizRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("Quiz deactivated", zap.String("quiz_id", id), zap.String("actor", actorID))
	return nil
}

func (s *QuizService) ownedQuiz(ctx context.Context, actorID, id string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.CreatedBy != actorID {
		return nil, util.ErrPermissionDenied
	}
	return quiz, nil
}
