package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
)

type analyticsRepository struct {
	s *Store
}

// liveSales calls fn for every sale that is not soft-deleted. Caller holds the lock.
func (r *analyticsRepository) liveSales(fn func(entity.Sale)) {
	for _, sale := range r.s.sales {
		if !softDeleted(sale.DeletedAt) {
			fn(sale)
		}
	}
}

func (r *analyticsRepository) ProductSales(_ context.Context, rng *domainRepo.DateRange) ([]domainRepo.ProductSalesResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byProduct := make(map[uuid.UUID]*domainRepo.ProductSalesResult)
	var order []uuid.UUID
	r.liveSales(func(sale entity.Sale) {
		if !rng.Contains(sale.CreatedAt) {
			return
		}
		for _, item := range sale.Items {
			if item.Type != enum.ProductTypeProduct {
				continue
			}
			agg, ok := byProduct[item.ProductID]
			if !ok {
				agg = &domainRepo.ProductSalesResult{ProductID: item.ProductID}
				byProduct[item.ProductID] = agg
				order = append(order, item.ProductID)
			}
			agg.Qty += int64(item.Qty)
			agg.Income += item.LineTotal
		}
	})

	results := make([]domainRepo.ProductSalesResult, 0, len(order))
	for _, id := range order {
		results = append(results, *byProduct[id])
	}
	return results, nil
}

func (r *analyticsRepository) DeliveredServiceIncome(_ context.Context, rng *domainRepo.DateRange) (*domainRepo.ServiceIncomeResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result domainRepo.ServiceIncomeResult
	for _, repair := range r.s.repairs {
		if repair.Status != enum.RepairStatusDelivered || !rng.Contains(repair.UpdatedAt) {
			continue
		}
		sale, ok := r.s.sales[repair.SaleID]
		if !ok || softDeleted(sale.DeletedAt) {
			continue
		}
		for _, item := range sale.Items {
			if item.ID == repair.SaleItemID && item.Type == enum.ProductTypeService {
				result.Income += item.LineTotal
				result.RepairCount++
				break
			}
		}
	}
	return &result, nil
}

func (r *analyticsRepository) SalesTotals(_ context.Context, rng *domainRepo.DateRange) (*domainRepo.SalesTotalResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result domainRepo.SalesTotalResult
	r.liveSales(func(sale entity.Sale) {
		if rng.Contains(sale.CreatedAt) {
			result.Total += sale.Total
			result.Count++
		}
	})
	return &result, nil
}

func (r *analyticsRepository) ExpenseTotals(_ context.Context, rng *domainRepo.DateRange) (map[enum.ExpenseType]float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	totals := make(map[enum.ExpenseType]float64)
	for _, expense := range r.s.expenses {
		if softDeleted(expense.DeletedAt) || !rng.Contains(expense.Date) {
			continue
		}
		totals[expense.Type] += expense.Amount
	}
	return totals, nil
}

func (r *analyticsRepository) MonthlyLineIncome(_ context.Context, rng domainRepo.DateRange, loc *time.Location) ([]domainRepo.MonthlyLineIncomeResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type bucket struct {
		month int
		typ   enum.ProductType
	}
	sums := make(map[bucket]float64)
	r.liveSales(func(sale entity.Sale) {
		if !rng.Contains(sale.CreatedAt) {
			return
		}
		month := int(sale.CreatedAt.In(loc).Month())
		for _, item := range sale.Items {
			sums[bucket{month, item.Type}] += item.LineTotal
		}
	})

	results := make([]domainRepo.MonthlyLineIncomeResult, 0, len(sums))
	for key, income := range sums {
		results = append(results, domainRepo.MonthlyLineIncomeResult{Month: key.month, Type: key.typ, Income: income})
	}
	return results, nil
}

func (r *analyticsRepository) MonthlyExpenses(_ context.Context, rng domainRepo.DateRange, loc *time.Location) ([]domainRepo.MonthlyAmountResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sums := make(map[int]float64)
	for _, expense := range r.s.expenses {
		if softDeleted(expense.DeletedAt) || !rng.Contains(expense.Date) {
			continue
		}
		sums[int(expense.Date.In(loc).Month())] += expense.Amount
	}

	results := make([]domainRepo.MonthlyAmountResult, 0, len(sums))
	for month, amount := range sums {
		results = append(results, domainRepo.MonthlyAmountResult{Month: month, Amount: amount})
	}
	return results, nil
}
