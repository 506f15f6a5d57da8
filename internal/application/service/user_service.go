package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/apperror"
	"github.com/sangkips/repairshop-api/pkg/pagination"
	"github.com/sangkips/repairshop-api/pkg/utils"
)

// UserService handles user management operations
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserInput represents the create user input
type CreateUserInput struct {
	Username string
	Name     string
	Password string
	Roles    enum.RoleSet
}

// CreateUser creates a staff account with at least one role
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	var fieldErrors []apperror.FieldError
	username := strings.TrimSpace(input.Username)
	if username == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "username", Message: "username is required"})
	}
	if len(input.Password) < 6 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	if len(input.Roles) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "roles", Message: "at least one role is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username: username,
		Name:     strings.TrimSpace(input.Name),
		Password: hashedPassword,
		Roles:    enum.NewRoleSet(input.Roles...),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.NewConflictError("Username already taken")
		}
		return nil, apperror.NewStorageError(err)
	}
	return user, nil
}

// ListUsers returns a paginated list of users
func (s *UserService) ListUsers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	params.Validate()

	users, total, err := s.userRepo.List(ctx, params, search)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(users, pag), nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// UpdateUserRoles replaces the roles of a user
func (s *UserService) UpdateUserRoles(ctx context.Context, userID uuid.UUID, roles enum.RoleSet) (*entity.User, error) {
	if len(roles) == 0 {
		return nil, apperror.NewFieldError("roles", "at least one role is required")
	}

	updated, err := s.userRepo.UpdateRoles(ctx, userID, enum.NewRoleSet(roles...))
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if !updated {
		return nil, apperror.NewNotFoundError("User")
	}
	return s.GetUser(ctx, userID)
}

// DeleteUser soft deletes a user; nobody can delete their own account
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return apperror.NewBadRequestError("You cannot delete your own account")
	}

	deleted, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return apperror.NewStorageError(err)
	}
	if !deleted {
		return apperror.NewNotFoundError("User")
	}
	return nil
}
