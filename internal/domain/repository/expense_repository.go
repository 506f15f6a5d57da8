package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

// ExpenseRepository defines the interface for expense data operations
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error)
	List(ctx context.Context, params *ExpenseFilterParams) ([]entity.Expense, int64, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ExpenseFilterParams contains filtering parameters for expense queries
type ExpenseFilterParams struct {
	Pagination *pagination.PaginationParams
	Type       *enum.ExpenseType
	Range      *DateRange
}
