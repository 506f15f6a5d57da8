package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
)

const guardedDecrement = `UPDATE "products" SET "stock"=stock - \$1,"updated_at"=\$2 WHERE \(id = \$3 AND stock >= \$4\)`

func TestAtomicDecrementBatchGuardsStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(guardedDecrement).
		WithArgs(3, sqlmock.AnyArg(), id.String(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	failed, err := repo.AtomicDecrementBatch(context.Background(), map[uuid.UUID]int{id: 3})
	if err != nil || len(failed) != 0 {
		t.Fatalf("got failed=%v err=%v", failed, err)
	}
	expectationsMet(t, mock)
}

func TestAtomicDecrementBatchRollsBackWhenShort(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(guardedDecrement).
		WithArgs(5, sqlmock.AnyArg(), id.String(), 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	failed, err := repo.AtomicDecrementBatch(context.Background(), map[uuid.UUID]int{id: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failed) != 1 || failed[0] != id {
		t.Fatalf("expected %s reported short, got %v", id, failed)
	}
	expectationsMet(t, mock)
}

func TestAdjustStockBatchRollsBackIncrementsWhenShort(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)
	short := uuid.New()
	returned := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(guardedDecrement).
		WithArgs(2, sqlmock.AnyArg(), short.String(), 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`ROLLBACK TO SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	failed, err := repo.AdjustStockBatch(context.Background(), map[uuid.UUID]int{short: 2, returned: -4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failed) != 1 || failed[0] != short {
		t.Fatalf("expected %s reported short, got %v", short, failed)
	}
	expectationsMet(t, mock)
}

func TestProductUpdateLeavesStockColumnAlone(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET "title"=\$1,"code"=\$2,"type"=\$3,"purchase_price"=\$4,"sale_price"=\$5,"purchase_date"=\$6,"updated_at"=\$7 WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := &entity.Product{ID: uuid.New(), Title: "Charger", Type: enum.ProductTypeProduct, Stock: 7}
	if err := repo.Update(context.Background(), p); err != nil {
		t.Fatalf("update: %v", err)
	}
	expectationsMet(t, mock)
}
