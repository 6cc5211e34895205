package repository

import (
	"context"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/database"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionFilter narrows question listings. Zero values mean "no filter".
type QuestionFilter struct {
	Category   model.Category
	Difficulty model.Difficulty
	Tag        string
	Limit      int
}

type QuestionRepository struct {
	store *database.Handle
	cache *QuestionCache
}

func NewQuestionRepository(store *database.Handle, cache *QuestionCache) *QuestionRepository {
	return &QuestionRepository{store: store, cache: cache}
}

func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Create(q).Error
}

// FindByID returns the question whether or not it is active.
func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*model.Question, error) {
	if q, ok := r.cache.Get(ctx, id); ok {
		return q, nil
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	var q model.Question
	if err := db.First(&q, "id = ?", id).Error; err != nil {
		return nil, notFound(err, util.ErrQuestionNotFound)
	}
	r.cache.Set(ctx, &q)
	return &q, nil
}

// List returns active questions only.
func (r *QuestionRepository) List(ctx context.Context, f QuestionFilter) ([]model.Question, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Question{}).Where("active = ?", true)
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}
	query = whereTag(query, f.Tag)

	questions := []model.Question{}
	err = query.Order("created_at DESC").Limit(f.Limit).Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	if err := db.Save(q).Error; err != nil {
		return err
	}
	r.cache.Delete(ctx, q.ID)
	return nil
}

// SoftDelete marks the question inactive and refreshes updated_at.
func (r *QuestionRepository) SoftDelete(ctx context.Context, id string) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	res := db.Model(&model.Question{}).Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrQuestionNotFound
	}
	r.cache.Delete(ctx, id)
	return nil
}

func (r *QuestionRepository) UpdateImageURL(ctx context.Context, id, url string) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	res := db.Model(&model.Question{}).Where("id = ?", id).Update("image_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrQuestionNotFound
	}
	r.cache.Delete(ctx, id)
	return nil
}

func whereTag(query *gorm.DB, tag string) *gorm.DB {
	if tag == "" {
		return query
	}
	return query.Where(datatypes.JSONArrayQuery("tags").Contains(tag))
}
