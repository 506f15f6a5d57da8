package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create returns ErrDuplicateKey when the username is taken
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.User, int64, error)
	UpdateRoles(ctx context.Context, id uuid.UUID, roles enum.RoleSet) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
