package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/apperror"
)

// monthLabels are the month names shown on the shop's charts
var monthLabels = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// ReportResult is the financial summary of a period
type ReportResult struct {
	TotalIncome      float64         `json:"totalIncome"`
	ProductIncome    float64         `json:"productIncome"`
	ProductQty       int64           `json:"productQty"`
	ProductCost      float64         `json:"productCost"`
	ServiceIncome    float64         `json:"serviceIncome"`
	RepairCount      int64           `json:"repairCount"`
	AvgRepairIncome  float64         `json:"avgRepairIncome"`
	TotalSalesIncome float64         `json:"totalSalesIncome"`
	CountSales       int64           `json:"countSales"`
	TotalFixed       float64         `json:"totalFixed"`
	TotalVariable    float64         `json:"totalVariable"`
	TotalExpenses    float64         `json:"totalExpenses"`
	GrossProfit      float64         `json:"grossProfit"`
	NetProfit        float64         `json:"netProfit"`
	DailyStats       DailyStats      `json:"dailyStats"`
	Growth           Growth          `json:"growth"`
	Margin           float64         `json:"margin"`
	AvgTicketSale    float64         `json:"avgTicketSale"`
	AvgTicketRepair  float64         `json:"avgTicketRepair"`
	Monthly          []MonthlyBucket `json:"monthly"`
	GeneratedAt      time.Time       `json:"generatedAt"`
	Cached           bool            `json:"cached"`
}

// DailyStats are per-day averages over the period
type DailyStats struct {
	AvgTicketsPerDay float64 `json:"avgTicketsPerDay"`
	AvgIncomePerDay  float64 `json:"avgIncomePerDay"`
}

// Growth compares sales income with the preceding period
type Growth struct {
	MonthPercent float64 `json:"monthPercent"`
}

// MonthlyBucket is one month of the yearly chart
type MonthlyBucket struct {
	Month         string  `json:"month"`
	MonthIndex    int     `json:"monthIndex"`
	ProductIncome float64 `json:"productIncome"`
	ServiceIncome float64 `json:"serviceIncome"`
	Expenses      float64 `json:"expenses"`
	Net           float64 `json:"net"`
}

// reportInputs are the raw aggregates a report is built from
type reportInputs struct {
	productSales    []repository.ProductSalesResult
	purchasePrices  map[uuid.UUID]float64
	service         repository.ServiceIncomeResult
	sales           repository.SalesTotalResult
	previousSales   *repository.SalesTotalResult
	expenses        map[enum.ExpenseType]float64
	monthlyLines    []repository.MonthlyLineIncomeResult
	monthlyExpenses []repository.MonthlyAmountResult
}

// Compute runs every aggregate query for the period and builds the report; it never touches the cache
func (s *ReportService) Compute(ctx context.Context, period *Period) (*ReportResult, error) {
	in, err := s.gather(ctx, period)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	return buildReport(in, period, s.now()), nil
}

func (s *ReportService) gather(ctx context.Context, period *Period) (*reportInputs, error) {
	in := &reportInputs{}
	var err error

	if in.productSales, err = s.analytics.ProductSales(ctx, period.Range); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(in.productSales))
	for _, p := range in.productSales {
		ids = append(ids, p.ProductID)
	}
	if len(ids) > 0 {
		if in.purchasePrices, err = s.productRepo.PurchasePrices(ctx, ids); err != nil {
			return nil, err
		}
	}

	service, err := s.analytics.DeliveredServiceIncome(ctx, period.Range)
	if err != nil {
		return nil, err
	}
	in.service = *service

	sales, err := s.analytics.SalesTotals(ctx, period.Range)
	if err != nil {
		return nil, err
	}
	in.sales = *sales

	if period.Previous != nil {
		if in.previousSales, err = s.analytics.SalesTotals(ctx, period.Previous); err != nil {
			return nil, err
		}
	}

	if in.expenses, err = s.analytics.ExpenseTotals(ctx, period.Range); err != nil {
		return nil, err
	}

	year := *YearRange(period.TargetYear, s.loc)
	if in.monthlyLines, err = s.analytics.MonthlyLineIncome(ctx, year, s.loc); err != nil {
		return nil, err
	}
	if in.monthlyExpenses, err = s.analytics.MonthlyExpenses(ctx, year, s.loc); err != nil {
		return nil, err
	}

	return in, nil
}

// buildReport is the arithmetic of a report, free of any I/O
func buildReport(in *reportInputs, period *Period, generatedAt time.Time) *ReportResult {
	r := &ReportResult{GeneratedAt: generatedAt}

	for _, p := range in.productSales {
		r.ProductIncome += p.Income
		r.ProductQty += p.Qty
		// products missing from the price map cost nothing, as when they were never priced
		r.ProductCost += in.purchasePrices[p.ProductID] * float64(p.Qty)
	}

	r.ServiceIncome = in.service.Income
	r.RepairCount = in.service.RepairCount
	r.TotalSalesIncome = in.sales.Total
	r.CountSales = in.sales.Count
	r.TotalIncome = r.ProductIncome + r.ServiceIncome

	r.TotalFixed = in.expenses[enum.ExpenseTypeFixed]
	r.TotalVariable = in.expenses[enum.ExpenseTypeVariable]
	r.TotalExpenses = r.TotalFixed + r.TotalVariable

	r.GrossProfit = r.TotalIncome - r.ProductCost
	r.NetProfit = r.GrossProfit - r.TotalExpenses
	if r.TotalIncome != 0 {
		r.Margin = r.GrossProfit / r.TotalIncome * 100
	}

	days := float64(period.Days)
	r.DailyStats = DailyStats{
		AvgTicketsPerDay: math.Round(float64(r.CountSales)/days*100) / 100,
		AvgIncomePerDay:  r.TotalIncome / days,
	}

	if r.CountSales > 0 {
		r.AvgTicketSale = r.TotalSalesIncome / float64(r.CountSales)
	}
	if r.RepairCount > 0 {
		r.AvgTicketRepair = r.ServiceIncome / float64(r.RepairCount)
		r.AvgRepairIncome = r.AvgTicketRepair
	}

	if in.previousSales != nil {
		r.Growth.MonthPercent = growthPercent(r.TotalSalesIncome, in.previousSales.Total)
	}

	r.Monthly = monthlySeries(in.monthlyLines, in.monthlyExpenses)
	return r
}

// growthPercent is the relative change from prev to curr; from nothing to something counts as 100%
func growthPercent(curr, prev float64) float64 {
	if prev == 0 {
		if curr == 0 {
			return 0
		}
		return 100
	}
	return (curr - prev) / math.Abs(prev) * 100
}

func monthlySeries(lines []repository.MonthlyLineIncomeResult, expenses []repository.MonthlyAmountResult) []MonthlyBucket {
	buckets := make([]MonthlyBucket, 12)
	for i := range buckets {
		buckets[i] = MonthlyBucket{Month: monthLabels[i], MonthIndex: i + 1}
	}

	for _, l := range lines {
		if l.Month < 1 || l.Month > 12 {
			continue
		}
		switch l.Type {
		case enum.ProductTypeProduct:
			buckets[l.Month-1].ProductIncome += l.Income
		case enum.ProductTypeService:
			buckets[l.Month-1].ServiceIncome += l.Income
		}
	}
	for _, e := range expenses {
		if e.Month < 1 || e.Month > 12 {
			continue
		}
		buckets[e.Month-1].Expenses += e.Amount
	}

	for i := range buckets {
		b := &buckets[i]
		b.Net = b.ProductIncome + b.ServiceIncome - b.Expenses
	}
	return buckets
}
