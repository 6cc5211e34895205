package repository

import (
	"context"
	"errors"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/util"
	"narraprep_backend/pkg/database"
	"time"

	"gorm.io/gorm"
)

// maxStatsRetries bounds the compare-and-swap loop of ModifyStats.
const maxStatsRetries = 3

type UserRepository struct {
	store *database.Handle
}

func NewUserRepository(store *database.Handle) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	return db.Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, limit int) ([]model.User, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	users := []model.User{}
	err = db.Order("created_at ASC").Limit(limit).Find(&users).Error
	return users, err
}

// UpdateFields applies a partial update and bumps the version so concurrent stats writers
// notice the change.
func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	db, err := r.store.DB(ctx)
	if err != nil {
		return err
	}
	fields["version"] = gorm.Expr("version + 1")
	res := db.Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"last_login": at})
}

// ModifyStats reads the user, lets fn mutate its statistics, and writes them back only if
// nobody else wrote the document in between. Conflicts are retried maxStatsRetries times.
func (r *UserRepository) ModifyStats(ctx context.Context, id string, fn func(u *model.User)) (*model.User, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	for i := 0; i < maxStatsRetries; i++ {
		var user model.User
		if err := db.First(&user, "id = ?", id).Error; err != nil {
			return nil, notFound(err, util.ErrUserNotFound)
		}

		version := user.Version
		fn(&user)

		res := db.Model(&model.User{}).
			Where("id = ? AND version = ?", id, version).
			Updates(map[string]interface{}{
				"stats":          user.Stats,
				"category_stats": user.CategoryStats,
				"version":        gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			user.Version = version + 1
			return &user, nil
		}
	}
	return nil, util.ErrConcurrentUpdate
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
