package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
)

func TestAtomicDecrementBatchAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	products := s.Products()

	a := &entity.Product{Title: "Cable", Type: enum.ProductTypeProduct, Stock: 5}
	b := &entity.Product{Title: "Case", Type: enum.ProductTypeProduct, Stock: 1}
	_ = products.Create(ctx, a)
	_ = products.Create(ctx, b)

	failed, err := products.AtomicDecrementBatch(ctx, map[uuid.UUID]int{a.ID: 2, b.ID: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failed) != 1 || failed[0] != b.ID {
		t.Fatalf("expected %s to fail, got %v", b.ID, failed)
	}

	got, _ := products.GetByID(ctx, a.ID)
	if got.Stock != 5 {
		t.Errorf("stock of untouched product changed: got %d, want 5", got.Stock)
	}

	failed, _ = products.AtomicDecrementBatch(ctx, map[uuid.UUID]int{a.ID: 2, b.ID: 1})
	if len(failed) != 0 {
		t.Fatalf("expected success, got failures %v", failed)
	}
	got, _ = products.GetByID(ctx, b.ID)
	if got.Stock != 0 {
		t.Errorf("expected stock 0, got %d", got.Stock)
	}
}

func TestCompleteIfAllDelivered(t *testing.T) {
	ctx := context.Background()
	s := New()

	sale := &entity.Sale{SaleCode: "V-1", Status: enum.SaleStatusPending}
	if err := s.Sales().Create(ctx, sale); err != nil {
		t.Fatalf("create sale: %v", err)
	}
	repairs := []entity.Repair{
		{SaleID: sale.ID, Status: enum.RepairStatusDelivered},
		{SaleID: sale.ID, Status: enum.RepairStatusCompleted},
	}
	_ = s.Repairs().CreateBatch(ctx, repairs)

	done, _ := s.Sales().CompleteIfAllDelivered(ctx, sale.ID)
	if done {
		t.Fatal("sale completed while a repair was still undelivered")
	}

	_, _ = s.Repairs().UpdateStatusIf(ctx, repairs[1].ID, enum.RepairStatusCompleted, enum.RepairStatusDelivered)
	done, _ = s.Sales().CompleteIfAllDelivered(ctx, sale.ID)
	if !done {
		t.Fatal("expected sale to complete")
	}

	done, _ = s.Sales().CompleteIfAllDelivered(ctx, sale.ID)
	if done {
		t.Error("completing twice should report no change")
	}
}

func TestSaleCreateRejectsDuplicateCode(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Sales().Create(ctx, &entity.Sale{SaleCode: "V-9"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := s.Sales().Create(ctx, &entity.Sale{SaleCode: "V-9"}); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestReportCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithReportCacheTTL(time.Minute), WithClock(func() time.Time { return now }))
	cache := s.ReportCache()

	_ = cache.Upsert(ctx, &entity.ReportCache{Key: "k", Params: "{}", Result: `{"netIncome":1}`})

	entry, _ := cache.Get(ctx, "k")
	if entry == nil {
		t.Fatal("expected a fresh entry")
	}

	now = now.Add(time.Minute)
	entry, _ = cache.Get(ctx, "k")
	if entry != nil {
		t.Fatal("expected entry to be expired")
	}

	removed, _ := cache.DeleteExpired(ctx)
	if removed != 1 {
		t.Errorf("expected 1 removed entry, got %d", removed)
	}
}

func TestDeliveredServiceIncomeCountsEachRepairOnce(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := entity.SaleItem{ID: uuid.New(), Type: enum.ProductTypeService, Qty: 1, LineTotal: 300}
	second := entity.SaleItem{ID: uuid.New(), Type: enum.ProductTypeService, Qty: 1, LineTotal: 500}
	sale := &entity.Sale{SaleCode: "V-2", Items: []entity.SaleItem{first, second}}
	_ = s.Sales().Create(ctx, sale)
	_ = s.Repairs().CreateBatch(ctx, []entity.Repair{
		{SaleID: sale.ID, SaleItemID: first.ID, Status: enum.RepairStatusDelivered},
		{SaleID: sale.ID, SaleItemID: second.ID, Status: enum.RepairStatusInProgress},
	})

	result, err := s.Analytics().DeliveredServiceIncome(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Income != 300 || result.RepairCount != 1 {
		t.Errorf("got income %v count %d, want 300 and 1", result.Income, result.RepairCount)
	}
}

func TestAdjustStockBatchAllOrNothing(t *testing.T) {
	ctx := context.Background()
	products := New().Products()

	a := &entity.Product{Title: "Cable", Type: enum.ProductTypeProduct, Stock: 2}
	b := &entity.Product{Title: "Case", Type: enum.ProductTypeProduct, Stock: 1}
	_ = products.Create(ctx, a)
	_ = products.Create(ctx, b)

	failed, _ := products.AdjustStockBatch(ctx, map[uuid.UUID]int{a.ID: -3, b.ID: 2})
	if len(failed) != 1 || failed[0] != b.ID {
		t.Fatalf("expected %s to fail, got %v", b.ID, failed)
	}
	if got, _ := products.GetByID(ctx, a.ID); got.Stock != 2 {
		t.Errorf("increment applied despite a failed line: stock %d", got.Stock)
	}

	if failed, _ = products.AdjustStockBatch(ctx, map[uuid.UUID]int{a.ID: -3, b.ID: 1}); len(failed) != 0 {
		t.Fatalf("expected success, got %v", failed)
	}
	if got, _ := products.GetByID(ctx, a.ID); got.Stock != 5 {
		t.Errorf("stock of a: got %d, want 5", got.Stock)
	}
	if got, _ := products.GetByID(ctx, b.ID); got.Stock != 0 {
		t.Errorf("stock of b: got %d, want 0", got.Stock)
	}
}

func TestProductUpdateKeepsStock(t *testing.T) {
	ctx := context.Background()
	products := New().Products()

	p := &entity.Product{Title: "Cable", Type: enum.ProductTypeProduct, Stock: 4}
	_ = products.Create(ctx, p)

	edit := *p
	edit.Title = "USB-C cable"
	edit.Stock = 99
	if err := products.Update(ctx, &edit); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := products.GetByID(ctx, p.ID)
	if got.Title != "USB-C cable" || got.Stock != 4 {
		t.Errorf("got %q with stock %d, want USB-C cable with stock 4", got.Title, got.Stock)
	}
}

func TestReplaceItemsSwapsLines(t *testing.T) {
	ctx := context.Background()
	sales := New().Sales()

	sale := &entity.Sale{SaleCode: "V-R", Status: enum.SaleStatusPending, Total: 10,
		Items: []entity.SaleItem{{Title: "Old", Qty: 1, LineTotal: 10}}}
	_ = sales.Create(ctx, sale)

	replacement := &entity.Sale{ID: sale.ID, Status: enum.SaleStatusCompleted, Total: 30, Items: []entity.SaleItem{
		{Title: "New A", Qty: 1, LineTotal: 10},
		{Title: "New B", Qty: 2, LineTotal: 20},
	}}
	if ok, err := sales.ReplaceItems(ctx, replacement); err != nil || !ok {
		t.Fatalf("replace: ok=%v err=%v", ok, err)
	}

	got, _ := sales.GetByID(ctx, sale.ID)
	if len(got.Items) != 2 || got.Items[1].Position != 1 || got.Items[1].SaleID != sale.ID {
		t.Fatalf("lines not replaced: %+v", got.Items)
	}
	if got.Total != 30 || got.Status != enum.SaleStatusCompleted || got.SaleCode != "V-R" {
		t.Errorf("header not updated: %+v", got)
	}

	if ok, _ := sales.ReplaceItems(ctx, &entity.Sale{ID: uuid.New()}); ok {
		t.Error("replacing lines of an unknown sale should report false")
	}
}

func TestIdempotencyReservation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	keys := New(WithClock(func() time.Time { return now })).Idempotency()
	userID := uuid.New()

	ikey := &entity.IdempotencyKey{Key: "k", UserID: userID, RequestHash: "h", ExpiresAt: now.Add(time.Minute)}
	if ok, _ := keys.Reserve(ctx, ikey); !ok {
		t.Fatal("first reservation should succeed")
	}
	if ok, _ := keys.Reserve(ctx, &entity.IdempotencyKey{Key: "k", UserID: userID, ExpiresAt: now.Add(time.Minute)}); ok {
		t.Fatal("live reservation must not be taken over")
	}

	held, _ := keys.GetByKey(ctx, "k", userID)
	if held == nil || !held.InFlight() {
		t.Fatalf("expected an in-flight row, got %+v", held)
	}

	ikey.ResponseCode = 201
	ikey.ResponseBody = `{"ok":true}`
	ikey.ExpiresAt = now.Add(24 * time.Hour)
	_ = keys.Complete(ctx, ikey)
	_ = keys.Release(ctx, "k", userID)

	done, _ := keys.GetByKey(ctx, "k", userID)
	if done == nil || done.ResponseCode != 201 {
		t.Fatalf("completed row should survive release, got %+v", done)
	}

	now = now.Add(25 * time.Hour)
	if ok, _ := keys.Reserve(ctx, &entity.IdempotencyKey{Key: "k", UserID: userID, ExpiresAt: now.Add(time.Minute)}); !ok {
		t.Error("expired key should be reserved again")
	}
}
