package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

// catalogColumns are the product columns an edit may overwrite; stock is not one of them
var catalogColumns = []string{"title", "code", "type", "purchase_price", "sale_price", "purchase_date"}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).
		Model(product).
		Select(catalogColumns).
		Updates(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{})

	if params.Search != "" {
		query = query.Where("title ILIKE ? OR code ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("title ASC").
		Find(&products).Error

	return products, total, err
}

// AtomicDecrementBatch atomically decrements stock for multiple products in a single transaction.
// Each row is only touched while stock >= amount, so concurrent sales can never oversell.
// If any product has insufficient stock, the entire transaction is rolled back.
func (r *productRepository) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	if len(decrements) == 0 {
		return nil, nil
	}

	var failedIDs []uuid.UUID
	errInsufficient := errors.New("insufficient stock")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, amount := range decrements {
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND stock >= ?", id, amount).
				Update("stock", gorm.Expr("stock - ?", amount))

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}

		if len(failedIDs) > 0 {
			return errInsufficient
		}

		return nil
	})

	if errors.Is(err, errInsufficient) {
		return failedIDs, nil
	}

	return nil, err
}

// AtomicIncrementBatch atomically increments stock for multiple products
func (r *productRepository) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	if len(increments) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, amount := range increments {
			if err := tx.Unscoped().Model(&entity.Product{}).
				Where("id = ?", id).
				Update("stock", gorm.Expr("stock + ?", amount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AdjustStockBatch runs the guarded decrements and the increments of one stock
// move in a single transaction, so a short product rolls back the whole move.
func (r *productRepository) AdjustStockBatch(ctx context.Context, deltas map[uuid.UUID]int) ([]uuid.UUID, error) {
	decrements := make(map[uuid.UUID]int)
	increments := make(map[uuid.UUID]int)
	for id, delta := range deltas {
		switch {
		case delta > 0:
			decrements[id] = delta
		case delta < 0:
			increments[id] = -delta
		}
	}
	if len(decrements) == 0 && len(increments) == 0 {
		return nil, nil
	}

	var failedIDs []uuid.UUID
	errInsufficient := errors.New("insufficient stock")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &productRepository{db: tx}

		failed, err := txRepo.AtomicDecrementBatch(ctx, decrements)
		if err != nil {
			return err
		}
		if len(failed) > 0 {
			failedIDs = failed
			return errInsufficient
		}

		return txRepo.AtomicIncrementBatch(ctx, increments)
	})

	if errors.Is(err, errInsufficient) {
		return failedIDs, nil
	}

	return nil, err
}

func (r *productRepository) PurchasePrices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	prices := make(map[uuid.UUID]float64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}

	var rows []struct {
		ID            uuid.UUID
		PurchasePrice float64
	}
	err := r.db.WithContext(ctx).Unscoped().
		Model(&entity.Product{}).
		Select("id, purchase_price").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		prices[row.ID] = row.PurchasePrice
	}
	return prices, nil
}
