package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/apperror"
	"github.com/sangkips/repairshop-api/pkg/utils"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtManager *utils.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User        *entity.User
	AccessToken string
	ExpiresIn   int64
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.Roles.Strings())
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:        user,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}

// GetCurrentUser returns the signed-in user
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if user == nil {
		return nil, apperror.ErrUnauthorized
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.GetCurrentUser(ctx, input.UserID)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewBadRequestError("Current password is incorrect")
	}
	if len(input.NewPassword) < 6 {
		return apperror.NewFieldError("new_password", "new_password must be at least 6 characters")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	if _, err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return apperror.NewStorageError(err)
	}
	return nil
}
