package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

type productRepository struct {
	s *Store
}

func (r *productRepository) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := r.s.now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.s.products[product.ID] = *product
	return nil
}

func (r *productRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	product, ok := r.s.products[id]
	if !ok || softDeleted(product.DeletedAt) {
		return nil, nil
	}
	return &product, nil
}

func (r *productRepository) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := make([]entity.Product, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := r.s.products[id]; ok && !softDeleted(product.DeletedAt) {
			products = append(products, product)
		}
	}
	return products, nil
}

func (r *productRepository) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.products[product.ID]
	if !ok || softDeleted(current.DeletedAt) {
		return nil
	}
	product.CreatedAt = current.CreatedAt
	product.Stock = current.Stock
	product.UpdatedAt = r.s.now()
	r.s.products[product.ID] = *product
	return nil
}

func (r *productRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	product, ok := r.s.products[id]
	if !ok || softDeleted(product.DeletedAt) {
		return false, nil
	}
	product.DeletedAt = r.s.deletedAt()
	r.s.products[id] = product
	return true, nil
}

func (r *productRepository) List(_ context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.Product
	for _, product := range r.s.products {
		if softDeleted(product.DeletedAt) {
			continue
		}
		if params.Type != nil && product.Type != *params.Type {
			continue
		}
		if params.Search != "" && !containsFold(product.Title, params.Search) && !containsFold(product.Code, params.Search) {
			continue
		}
		matched = append(matched, product)
	}

	slices.SortFunc(matched, func(a, b entity.Product) int {
		return strings.Compare(a.Title, b.Title)
	})

	total := int64(len(matched))
	if params.Pagination != nil {
		matched = pagination.Window(matched, params.Pagination)
	}
	return matched, total, nil
}

// AtomicDecrementBatch checks every product before touching any of them,
// so a failing line leaves all stock as it was.
func (r *productRepository) AtomicDecrementBatch(_ context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var failed []uuid.UUID
	for id, qty := range decrements {
		product, ok := r.s.products[id]
		if !ok || softDeleted(product.DeletedAt) || product.Stock < qty {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}

	now := r.s.now()
	for id, qty := range decrements {
		product := r.s.products[id]
		product.Stock -= qty
		product.UpdatedAt = now
		r.s.products[id] = product
	}
	return nil, nil
}

func (r *productRepository) AtomicIncrementBatch(_ context.Context, increments map[uuid.UUID]int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for id, qty := range increments {
		product, ok := r.s.products[id]
		if !ok {
			continue
		}
		product.Stock += qty
		product.UpdatedAt = now
		r.s.products[id] = product
	}
	return nil
}

func (r *productRepository) AdjustStockBatch(_ context.Context, deltas map[uuid.UUID]int) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var failed []uuid.UUID
	for id, delta := range deltas {
		if delta <= 0 {
			continue
		}
		product, ok := r.s.products[id]
		if !ok || softDeleted(product.DeletedAt) || product.Stock < delta {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}

	now := r.s.now()
	for id, delta := range deltas {
		product, ok := r.s.products[id]
		if !ok || delta == 0 {
			continue
		}
		product.Stock -= delta
		product.UpdatedAt = now
		r.s.products[id] = product
	}
	return nil, nil
}

func (r *productRepository) PurchasePrices(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	prices := make(map[uuid.UUID]float64, len(ids))
	for _, id := range ids {
		if product, ok := r.s.products[id]; ok {
			prices[id] = product.PurchasePrice
		}
	}
	return prices, nil
}
