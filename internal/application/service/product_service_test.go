package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
)

// saleAfterRead settles a sale of qty units right after the first product read,
// the way a checkout landing between an editor's read and write would
type saleAfterRead struct {
	repository.ProductRepository
	qty  int
	done bool
}

func (r *saleAfterRead) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := r.ProductRepository.GetByID(ctx, id)
	if err != nil || product == nil || r.done {
		return product, err
	}
	r.done = true
	if failed, err := r.ProductRepository.AtomicDecrementBatch(ctx, map[uuid.UUID]int{id: r.qty}); err != nil || len(failed) > 0 {
		return nil, err
	}
	return product, nil
}

func TestUpdateProductKeepsConcurrentSaleDecrement(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		wantStock int
	}{
		{"stock untouched", 5, 3},
		{"restock", 8, 6},
		{"lowered", 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			p := f.product(t, "Charger", enum.ProductTypeProduct, 60, 5)
			products := NewProductService(&saleAfterRead{ProductRepository: f.store.Products(), qty: 2})

			updated, err := products.UpdateProduct(ctx, p.ID, &ProductInput{
				Title:         "Fast charger",
				Type:          enum.ProductTypeProduct,
				PurchasePrice: 65,
				SalePrice:     120,
				Stock:         tt.stock,
			})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if updated.Stock != tt.wantStock {
				t.Errorf("stock: got %d, want %d", updated.Stock, tt.wantStock)
			}
			if updated.Title != "Fast charger" || updated.PurchasePrice != 65 {
				t.Errorf("catalog fields not written: %+v", updated)
			}
		})
	}
}

func TestUpdateProductRejectsStockBelowConcurrentSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Cable", enum.ProductTypeProduct, 10, 5)
	products := NewProductService(&saleAfterRead{ProductRepository: f.store.Products(), qty: 2})

	// taking 4 out of the 3 left after the sale would go negative
	_, err := products.UpdateProduct(ctx, p.ID, &ProductInput{Title: "Cable", Type: enum.ProductTypeProduct, Stock: 1})
	assertCode(t, err, http.StatusConflict)

	stocked, _ := f.store.Products().GetByID(ctx, p.ID)
	if stocked.Stock != 3 {
		t.Errorf("stock: got %d, want 3", stocked.Stock)
	}
}

func TestUpdateProductUnknown(t *testing.T) {
	f := newFixture(t)
	products := NewProductService(f.store.Products())

	_, err := products.UpdateProduct(context.Background(), uuid.New(), &ProductInput{Title: "Ghost"})
	assertCode(t, err, http.StatusNotFound)
}
