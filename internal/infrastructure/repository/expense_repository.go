package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"gorm.io/gorm"
)

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) domainRepo.ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error) {
	var expense entity.Expense
	err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &expense, err
}

func (r *expenseRepository) List(ctx context.Context, params *domainRepo.ExpenseFilterParams) ([]entity.Expense, int64, error) {
	var expenses []entity.Expense
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Expense{}).
		Scopes(Between("date", params.Range))

	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("date DESC, created_at DESC").
		Find(&expenses).Error

	return expenses, total, err
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.Expense{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
