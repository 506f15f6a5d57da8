package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/infrastructure/memory"
	"github.com/sangkips/repairshop-api/pkg/apperror"
	"go.uber.org/zap"
)

var testLoc = time.FixedZone("CST", -6*60*60)

// fixture wires every service over one in-memory store with a settable clock
type fixture struct {
	store   *memory.Store
	now     time.Time
	sales   *SaleService
	repairs *RepairService
	reports *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{now: time.Date(2025, time.March, 10, 12, 0, 0, 0, testLoc)}
	clock := func() time.Time { return f.now }

	f.store = memory.New(memory.WithClock(clock), memory.WithReportCacheTTL(5*time.Minute))
	log := zap.NewNop()

	f.sales = NewSaleService(f.store.Products(), f.store.Sales(), f.store.Repairs(), DefaultTaxRate, log)
	f.repairs = NewRepairService(f.store.Repairs(), f.store.Sales(), log)
	f.reports = NewReportService(f.store.Analytics(), f.store.Products(), f.store.ReportCache(), testLoc, log, WithReportClock(clock))
	return f
}

func (f *fixture) product(t *testing.T, title string, typ enum.ProductType, purchasePrice float64, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{Title: title, Type: typ, PurchasePrice: purchasePrice, Stock: stock}
	if err := f.store.Products().Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func serviceInfo() *entity.ServiceInfo {
	return &entity.ServiceInfo{
		CustomerName:  "Laura",
		CustomerPhone: "5551234567",
		Brand:         "Samsung",
		Model:         "A52",
		Description:   "Broken screen",
	}
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", code)
	}
	if !apperror.HasCode(err, code) {
		t.Fatalf("expected code %d, got %v", code, err)
	}
}

func approx(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
