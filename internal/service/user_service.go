package service

import (
	"context"
	"mime/multipart"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// CreateUserRequest 创建用户请求
// swagger:model CreateUserRequest
type CreateUserRequest struct {
	Email       string         `json:"email" binding:"required,email"`
	DisplayName string         `json:"display_name" binding:"required,max=100"`
	Role        model.UserRole `json:"role" binding:"omitempty,oneof=student admin"`
	Password    string         `json:"password" binding:"required,min=6"`
}

// UpdateUserRequest carries the user fields a client may change. Nil fields are left alone.
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	DisplayName *string             `json:"display_name" binding:"omitempty,max=100"`
	Settings    *model.UserSettings `json:"settings"`
}

// UserService 处理用户相关的业务逻辑
type UserService struct {
	UserRepo    *repository.UserRepository
	AuthService *AuthService
	Storage     *StorageService
}

func NewUserService(userRepo *repository.UserRepository, authService *AuthService, storage *StorageService) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		AuthService: authService,
		Storage:     storage,
	}
}

func (s *UserService) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	return s.UserRepo.List(ctx, limit)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

// CreateUser registers the credentials first; the identity uid becomes the document id.
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*model.User, error) {
	identity, err := s.AuthService.CreateIdentity(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.Student
	}

	user := model.NewUser(identity.UID, identity.Email, req.DisplayName, role)
	user.Password = identity.PasswordHash
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.Info("User created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*model.User, error) {
	fields := map[string]interface{}{}
	if req.DisplayName != nil {
		fields["display_name"] = *req.DisplayName
	}
	if req.Settings != nil {
		settings := *req.Settings
		if settings.NotificationPreferences == nil {
			settings.NotificationPreferences = map[string]interface{}{}
		}
		fields["settings"] = datatypes.NewJSONType(settings)
	}

	if len(fields) == 0 {
		return s.UserRepo.FindByID(ctx, id)
	}
	if err := s.UserRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(ctx, id)
}

func (s *UserService) UploadAvatar(ctx context.Context, id string, file *multipart.FileHeader) (*model.User, error) {
	if _, err := s.UserRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.Storage.UploadImage(ctx, "avatars", id, file)
	if err != nil {
		return nil, err
	}

	if err := s.UserRepo.UpdateFields(ctx, id, map[string]interface{}{"profile_image_url": url}); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(ctx, id)
}
