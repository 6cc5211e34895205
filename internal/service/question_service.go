package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/logger"

	"go.uber.org/zap"
)

type OptionRequest struct {
	ID         string           `json:"id"`
	Content    string           `json:"content" binding:"required"`
	OptionType model.OptionType `json:"option_type" binding:"omitempty,oneof=text image"`
	IsCorrect  bool             `json:"is_correct"`
}

// QuestionRequest is the full question body used by both create and update.
// swagger:model QuestionRequest
type QuestionRequest struct {
	Text        string           `json:"text" binding:"required"`
	Explanation string           `json:"explanation"`
	Category    model.Category   `json:"category" binding:"omitempty,oneof=anatomy physiology pathology pharmacology microbiology general"`
	Difficulty  model.Difficulty `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Tags        []string         `json:"tags"`
	Options     []OptionRequest  `json:"options" binding:"required,min=1,dive"`
}

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	Storage      *StorageService
}

func NewQuestionService(questionRepo *repository.QuestionRepository, storage *StorageService) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		Storage:      storage,
	}
}

func (s *QuestionService) ListQuestions(ctx context.Context, filter repository.QuestionFilter) ([]model.Question, error) {
	return s.QuestionRepo.List(ctx, filter)
}

// GetQuestion hides soft-deleted questions.
func (s *QuestionService) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.Active {
		return nil, util.ErrQuestionNotFound
	}
	return q, nil
}

// CreateQuestion assigns ids to options that arrive without one.
func (s *QuestionService) CreateQuestion(ctx context.Context, req *QuestionRequest) (*model.Question, error) {
	options := make([]model.Option, 0, len(req.Options))
	seen := make(map[string]bool, len(req.Options))
	for _, o := range req.Options {
		opt := toOption(o)
		if opt.ID == "" {
			opt.ID = model.GenerateUUID()
		}
		if seen[opt.ID] {
			return nil, fmt.Errorf("%w: duplicate option id %q", util.ErrInvalidOptions, opt.ID)
		}
		seen[opt.ID] = true
		options = append(options, opt)
	}

	q := &model.Question{Active: true}
	applyQuestionRequest(q, req)
	q.Options = options

	if err := s.QuestionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	logger.Log.Info("Question created", zap.String("question_id", q.ID), zap.String("category", string(q.Category)))
	return q, nil
}

// UpdateQuestion replaces the question body. The option id set must match the stored one.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id string, req *QuestionRequest) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing := q.OptionIDs()
	if len(req.Options) != len(existing) {
		return nil, util.ErrInvalidOptions
	}
	options := make([]model.Option, 0, len(req.Options))
	seen := make(map[string]bool, len(req.Options))
	for _, o := range req.Options {
		if !existing[o.ID] || seen[o.ID] {
			return nil, util.ErrInvalidOptions
		}
		seen[o.ID] = true
		options = append(options, toOption(o))
	}

	applyQuestionRequest(q, req)
	q.Options = options

	if err := s.QuestionRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.QuestionRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("Question deactivated", zap.String("question_id", id))
	return nil
}

func (s *QuestionService) UploadImage(ctx context.Context, id string, file *multipart.FileHeader) (*model.Question, error) {
	if _, err := s.GetQuestion(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.Storage.UploadImage(ctx, "questions", id, file)
	if err != nil {
		return nil, err
	}
	if err := s.QuestionRepo.UpdateImageURL(ctx, id, url); err != nil {
		return nil, err
	}
	return s.QuestionRepo.FindByID(ctx, id)
}

func applyQuestionRequest(q *model.Question, req *QuestionRequest) {
	q.Text = req.Text
	q.Explanation = req.Explanation
	q.Category = req.Category
	if q.Category == "" {
		q.Category = model.General
	}
	q.Difficulty = req.Difficulty
	if q.Difficulty == "" {
		q.Difficulty = model.Medium
	}
	q.Tags = uniqueStrings(req.Tags)
}

func toOption(o OptionRequest) model.Option {
	optionType := o.OptionType
	if optionType == "" {
		optionType = model.OptionText
	}
	return model.Option{
		ID:         o.ID,
		Content:    o.Content,
		OptionType: optionType,
		IsCorrect:  o.IsCorrect,
	}
}

// uniqueStrings drops blanks and duplicates, keeping first-seen order. Never nil.
func uniqueStrings(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
