package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
)

// ProductSalesResult is the quantity and income of one product across sale lines
type ProductSalesResult struct {
	ProductID uuid.UUID
	Qty       int64
	Income    float64
}

// ServiceIncomeResult sums the service lines behind delivered repairs
type ServiceIncomeResult struct {
	Income      float64
	RepairCount int64
}

// SalesTotalResult is the gross total and count of sales
type SalesTotalResult struct {
	Total float64
	Count int64
}

// MonthlyLineIncomeResult is the income of one line type in one calendar month (1-12)
type MonthlyLineIncomeResult struct {
	Month  int
	Type   enum.ProductType
	Income float64
}

// MonthlyAmountResult is an amount bucketed by calendar month (1-12)
type MonthlyAmountResult struct {
	Month  int
	Amount float64
}

// AnalyticsRepository defines the aggregation queries behind financial reports.
// A nil range means all time.
type AnalyticsRepository interface {
	// ProductSales groups product-type sale lines by product over sale creation time
	ProductSales(ctx context.Context, rng *DateRange) ([]ProductSalesResult, error)

	// DeliveredServiceIncome joins each delivered repair (by update time) to the
	// service line that spawned it
	DeliveredServiceIncome(ctx context.Context, rng *DateRange) (*ServiceIncomeResult, error)

	// SalesTotals sums Sale.total over every sale regardless of status
	SalesTotals(ctx context.Context, rng *DateRange) (*SalesTotalResult, error)

	// ExpenseTotals groups expense amounts by type over the expense date
	ExpenseTotals(ctx context.Context, rng *DateRange) (map[enum.ExpenseType]float64, error)

	// MonthlyLineIncome buckets sale lines by type and month of sale creation in loc
	MonthlyLineIncome(ctx context.Context, rng DateRange, loc *time.Location) ([]MonthlyLineIncomeResult, error)

	// MonthlyExpenses buckets expense amounts by month of the expense date in loc
	MonthlyExpenses(ctx context.Context, rng DateRange, loc *time.Location) ([]MonthlyAmountResult, error)
}
