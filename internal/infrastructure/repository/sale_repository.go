package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return translateError(r.db.WithContext(ctx).Create(sale).Error)
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) GetByCode(ctx context.Context, saleCode string) (*entity.Sale, error) {
	var sale entity.Sale
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&sale, "sale_code = ?", saleCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) List(ctx context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	var sales []entity.Sale
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Sale{}).
		Scopes(Between("created_at", params.Range))

	if params.Search != "" {
		query = query.Where("sale_code ILIKE ? OR username ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Items", orderedItems).
		Order("created_at DESC").
		Find(&sales).Error

	return sales, total, err
}

func (r *saleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.Sale{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// ReplaceItems rewrites the totals of a sale and swaps its lines in one transaction
func (r *saleRepository) ReplaceItems(ctx context.Context, sale *entity.Sale) (bool, error) {
	replaced := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Sale{}).
			Where("id = ?", sale.ID).
			Updates(map[string]interface{}{
				"total":     sale.Total,
				"total_net": sale.TotalNet,
				"total_tax": sale.TotalTax,
				"status":    sale.Status,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Where("sale_id = ?", sale.ID).Delete(&entity.SaleItem{}).Error; err != nil {
			return err
		}

		for i := range sale.Items {
			sale.Items[i].SaleID = sale.ID
			sale.Items[i].Position = i
		}
		if len(sale.Items) > 0 {
			if err := tx.Create(&sale.Items).Error; err != nil {
				return err
			}
		}

		replaced = true
		return nil
	})
	return replaced, err
}

// CompleteIfAllDelivered flips pending -> completed in a single statement so the
// sibling check and the write see the same snapshot of repair statuses.
func (r *saleRepository) CompleteIfAllDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	undelivered := r.db.Model(&entity.Repair{}).
		Select("1").
		Where("sale_id = ? AND status <> ?", id, enum.RepairStatusDelivered)

	result := r.db.WithContext(ctx).Model(&entity.Sale{}).
		Where("id = ? AND status = ?", id, enum.SaleStatusPending).
		Where("NOT EXISTS (?)", undelivered).
		Update("status", enum.SaleStatusCompleted)

	return result.RowsAffected > 0, result.Error
}
