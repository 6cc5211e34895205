package service

import (
	"context"
	"errors"
	"narraprep_backend/internal/config"
	"narraprep_backend/internal/model"
	"narraprep_backend/internal/repository"
	"narraprep_backend/internal/util"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Identity is a freshly registered credential. UID becomes the user document id.
type Identity struct {
	UID          string
	Email        string
	PasswordHash string
}

// AuthService owns credentials and tokens.
type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// CreateIdentity rejects an email that is already registered and hashes the password.
func (s *AuthService) CreateIdentity(ctx context.Context, email, password string) (*Identity, error) {
	_, err := s.UserRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Identity{
		UID:          model.GenerateUUID(),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if errors.Is(err, util.ErrUserNotFound) {
		return "", nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	if err := s.UserRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return "", nil, err
	}
	user.LastLogin = &now
	return token, user, nil
}
