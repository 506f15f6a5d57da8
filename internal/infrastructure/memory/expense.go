package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

type expenseRepository struct {
	s *Store
}

func (r *expenseRepository) Create(_ context.Context, expense *entity.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	if expense.Category == "" {
		expense.Category = entity.DefaultExpenseCategory
	}
	now := r.s.now()
	expense.CreatedAt = now
	expense.UpdatedAt = now
	r.s.expenses[expense.ID] = *expense
	return nil
}

func (r *expenseRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	expense, ok := r.s.expenses[id]
	if !ok || softDeleted(expense.DeletedAt) {
		return nil, nil
	}
	return &expense, nil
}

func (r *expenseRepository) List(_ context.Context, params *domainRepo.ExpenseFilterParams) ([]entity.Expense, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.Expense
	for _, expense := range r.s.expenses {
		if softDeleted(expense.DeletedAt) {
			continue
		}
		if params.Type != nil && expense.Type != *params.Type {
			continue
		}
		if !params.Range.Contains(expense.Date) {
			continue
		}
		matched = append(matched, expense)
	}

	slices.SortFunc(matched, func(a, b entity.Expense) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := int64(len(matched))
	if params.Pagination != nil {
		matched = pagination.Window(matched, params.Pagination)
	}
	return matched, total, nil
}

func (r *expenseRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	expense, ok := r.s.expenses[id]
	if !ok || softDeleted(expense.DeletedAt) {
		return false, nil
	}
	expense.DeletedAt = r.s.deletedAt()
	r.s.expenses[id] = expense
	return true, nil
}
