package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/apperror"
	"github.com/sangkips/repairshop-api/pkg/pagination"
	"github.com/sangkips/repairshop-api/pkg/validator"
)

// ExpenseService records the shop's operating costs
type ExpenseService struct {
	expenseRepo repository.ExpenseRepository
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenseRepo repository.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// CreateExpenseInput represents the create expense input
type CreateExpenseInput struct {
	Type        enum.ExpenseType `json:"type" validate:"required,oneof=fixed variable"`
	Title       string           `json:"title" validate:"notblank"`
	Amount      float64          `json:"amount" validate:"gte=0"`
	Date        time.Time        `json:"date" validate:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	CreatedBy   uuid.UUID        `json:"-"`
}

// CreateExpense validates and stores an expense
func (s *ExpenseService) CreateExpense(ctx context.Context, input *CreateExpenseInput) (*entity.Expense, error) {
	if fieldErrors := validator.ValidateStruct(input, ""); len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	expense := &entity.Expense{
		Type:        input.Type,
		Title:       input.Title,
		Amount:      input.Amount,
		Date:        input.Date,
		Description: input.Description,
		Category:    input.Category,
	}
	if input.CreatedBy != uuid.Nil {
		createdBy := input.CreatedBy
		expense.CreatedBy = &createdBy
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, apperror.NewStorageError(err)
	}
	return expense, nil
}

// ListExpenses lists expenses, most recent date first
func (s *ExpenseService) ListExpenses(ctx context.Context, params *repository.ExpenseFilterParams) (*pagination.PaginatedResult[entity.Expense], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	expenses, total, err := s.expenseRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(expenses, pag), nil
}

// DeleteExpense soft deletes an expense
func (s *ExpenseService) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.expenseRepo.Delete(ctx, id)
	if err != nil {
		return apperror.NewStorageError(err)
	}
	if !deleted {
		return apperror.NewNotFoundError("Expense")
	}
	return nil
}
