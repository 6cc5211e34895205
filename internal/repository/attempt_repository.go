package repository

import (
	"context"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/database"
)

type AttemptRepository struct {
	store *database.Handle
}

func NewAttemptRepository(store *database.Handle) *AttemptRepository {
	return &AttemptRepository{store: store}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Create(attempt).Error
}

func (r *AttemptRepository) Update(ctx context.Context, attempt *model.Attempt) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Save(attempt).Error
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*model.Attempt, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	var a model.Attempt
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err, util.ErrAttemptNotFound)
	}
	return &a, nil
}

// ListByUser returns the user's attempts, newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Attempt, error) {
	return r.listBy(ctx, "user_id", userID, limit)
}

// ListByQuiz returns the quiz's attempts, newest first.
func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID string, limit int) ([]model.Attempt, error) {
	return r.listBy(ctx, "quiz_id", quizID, limit)
}

func (r *AttemptRepository) listBy(ctx context.Context, column, value string, limit int) ([]model.Attempt, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	attempts := []model.Attempt{}
	err = db.Where(column+" = ?", value).
		Order("started_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

// Delete removes the attempt permanently.
func (r *AttemptRepository) Delete(ctx context.Context, id string) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	res := db.Delete(&model.Attempt{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAttemptNotFound
	}
	return nil
}
