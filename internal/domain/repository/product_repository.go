package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	// Update writes the catalog fields of a product. Stock is left alone; it only
	// moves through the batch methods below.
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	// AtomicDecrementBatch atomically decrements stock for multiple products.
	// Returns the product IDs that failed (insufficient stock) and any error.
	// If any product fails, the entire transaction is rolled back.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) (failedIDs []uuid.UUID, err error)
	// AtomicIncrementBatch atomically increments stock for multiple products (for deletions/compensation).
	AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error
	// AdjustStockBatch moves stock by signed amounts in one transaction: positive
	// amounts are taken out under the same guard as AtomicDecrementBatch, negative
	// amounts are put back. Returns the products that fell short; nothing changes then.
	AdjustStockBatch(ctx context.Context, deltas map[uuid.UUID]int) (failedIDs []uuid.UUID, err error)
	// PurchasePrices returns the current purchase price of each product, soft-deleted ones included.
	PurchasePrices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error)
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Type       *enum.ProductType
}
