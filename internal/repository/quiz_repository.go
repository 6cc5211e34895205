package repository

import (
	"context"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/database"
	"time"
)

type QuizFilter struct {
	Category   model.Category
	Difficulty model.Difficulty
	Tag        string
	CreatedBy  string
	OnlyPublic bool
	Limit      int
}

type QuizRepository struct {
	store *database.Handle
}

func NewQuizRepository(store *database.Handle) *QuizRepository {
	return &QuizRepository{store: store}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Create(quiz).Error
}

// FindByID returns the quiz whether or not it is active.
func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	var quiz model.Quiz
	if err := db.First(&quiz, "id = ?", id).Error; err != nil {
		return nil, notFound(err, util.ErrQuizNotFound)
	}
	return &quiz, nil
}

// List returns active quizzes only.
func (r *QuizRepository) List(ctx context.Context, f QuizFilter) ([]model.Quiz, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Quiz{}).Where("active = ?", true)
	if f.CreatedBy != "" {
		query = query.Where("created_by = ?", f.CreatedBy)
	}
	if f.OnlyPublic {
		query = query.Where("is_public = ?", true)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}
	query = whereTag(query, f.Tag)

	quizzes := []model.Quiz{}
	err = query.Order("created_at DESC").Limit(f.Limit).Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Update(ctx context.Context, quiz *model.Quiz) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Save(quiz).Error
}

func (r *QuizRepository) SoftDelete(ctx context.Context, id string) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	res := db.Model(&model.Quiz{}).Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrQuizNotFound
	}
	return nil
}
