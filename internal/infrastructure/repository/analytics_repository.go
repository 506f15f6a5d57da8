package repository

import (
	"context"
	"time"

	"github.com/sangkips/repairshop-api/internal/domain/enum"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// rangeClause renders an optional BETWEEN predicate on column
func rangeClause(column string, rng *domainRepo.DateRange) (string, []interface{}) {
	if rng == nil {
		return "", nil
	}
	return " AND " + column + " BETWEEN ? AND ?", []interface{}{rng.From, rng.To}
}

func (r *analyticsRepository) ProductSales(ctx context.Context, rng *domainRepo.DateRange) ([]domainRepo.ProductSalesResult, error) {
	var results []domainRepo.ProductSalesResult

	where, args := rangeClause("s.created_at", rng)
	args = append([]interface{}{enum.ProductTypeProduct}, args...)

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			si.product_id AS product_id,
			COALESCE(SUM(si.qty), 0) AS qty,
			COALESCE(SUM(si.line_total), 0) AS income
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id AND s.deleted_at IS NULL
		WHERE si.type = ?`+where+`
		GROUP BY si.product_id
	`, args...).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) DeliveredServiceIncome(ctx context.Context, rng *domainRepo.DateRange) (*domainRepo.ServiceIncomeResult, error) {
	var result domainRepo.ServiceIncomeResult

	where, args := rangeClause("rp.updated_at", rng)
	args = append([]interface{}{enum.ProductTypeService, enum.RepairStatusDelivered}, args...)

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(si.line_total), 0) AS income,
			COUNT(DISTINCT rp.id) AS repair_count
		FROM repairs rp
		JOIN sales s ON s.id = rp.sale_id AND s.deleted_at IS NULL
		JOIN sale_items si ON si.id = rp.sale_item_id AND si.type = ?
		WHERE rp.status = ?`+where+`
	`, args...).Scan(&result).Error

	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *analyticsRepository) SalesTotals(ctx context.Context, rng *domainRepo.DateRange) (*domainRepo.SalesTotalResult, error) {
	var result domainRepo.SalesTotalResult

	where, args := rangeClause("created_at", rng)

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(total), 0) AS total,
			COUNT(id) AS count
		FROM sales
		WHERE deleted_at IS NULL`+where, args...).Scan(&result).Error

	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *analyticsRepository) ExpenseTotals(ctx context.Context, rng *domainRepo.DateRange) (map[enum.ExpenseType]float64, error) {
	var rows []struct {
		Type  enum.ExpenseType
		Total float64
	}

	where, args := rangeClause("date", rng)

	err := r.db.WithContext(ctx).Raw(`
		SELECT type, COALESCE(SUM(amount), 0) AS total
		FROM expenses
		WHERE deleted_at IS NULL`+where+`
		GROUP BY type
	`, args...).Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	totals := make(map[enum.ExpenseType]float64, len(rows))
	for _, row := range rows {
		totals[row.Type] = row.Total
	}
	return totals, nil
}

func (r *analyticsRepository) MonthlyLineIncome(ctx context.Context, rng domainRepo.DateRange, loc *time.Location) ([]domainRepo.MonthlyLineIncomeResult, error) {
	var results []domainRepo.MonthlyLineIncomeResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			EXTRACT(MONTH FROM s.created_at AT TIME ZONE ?)::int AS month,
			si.type AS type,
			COALESCE(SUM(si.line_total), 0) AS income
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id AND s.deleted_at IS NULL
		WHERE s.created_at BETWEEN ? AND ?
		GROUP BY 1, 2
	`, loc.String(), rng.From, rng.To).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *analyticsRepository) MonthlyExpenses(ctx context.Context, rng domainRepo.DateRange, loc *time.Location) ([]domainRepo.MonthlyAmountResult, error) {
	var results []domainRepo.MonthlyAmountResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			EXTRACT(MONTH FROM date AT TIME ZONE ?)::int AS month,
			COALESCE(SUM(amount), 0) AS amount
		FROM expenses
		WHERE deleted_at IS NULL AND date BETWEEN ? AND ?
		GROUP BY 1
	`, loc.String(), rng.From, rng.To).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}
