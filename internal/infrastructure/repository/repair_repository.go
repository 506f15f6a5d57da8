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

type repairRepository struct {
	db *gorm.DB
}

// NewRepairRepository creates a new repair repository
func NewRepairRepository(db *gorm.DB) domainRepo.RepairRepository {
	return &repairRepository{db: db}
}

func (r *repairRepository) CreateBatch(ctx context.Context, repairs []entity.Repair) error {
	if len(repairs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&repairs).Error
}

func (r *repairRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Repair, error) {
	var repair entity.Repair
	err := r.db.WithContext(ctx).First(&repair, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &repair, err
}

func (r *repairRepository) List(ctx context.Context, params *domainRepo.RepairFilterParams) ([]entity.Repair, int64, error) {
	var repairs []entity.Repair
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Repair{})

	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", params.Statuses)
	}

	if len(params.Exclude) > 0 {
		query = query.Where("status NOT IN ?", params.Exclude)
	}

	if params.SaleID != nil {
		query = query.Where("sale_id = ?", *params.SaleID)
	}

	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("sale_code ILIKE ? OR customer_name ILIKE ? OR brand ILIKE ? OR model ILIKE ?",
			like, like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := params.Sort
	if sort == "" {
		sort = domainRepo.RepairSortNewest
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order(string(sort)).
		Find(&repairs).Error

	return repairs, total, err
}

// UpdateStatusIf is the compare-and-swap used by guarded transitions
func (r *repairRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enum.RepairStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Repair{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected > 0, result.Error
}

func (r *repairRepository) SetStatus(ctx context.Context, id uuid.UUID, status enum.RepairStatus, revision *string) (bool, error) {
	updates := map[string]interface{}{"status": status}
	if revision != nil {
		updates["revision"] = *revision
	}
	result := r.db.WithContext(ctx).Model(&entity.Repair{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (r *repairRepository) UpdateDetails(ctx context.Context, repair *entity.Repair) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Repair{}).
		Where("id = ?", repair.ID).
		Updates(map[string]interface{}{
			"customer_name":   repair.Customer.Name,
			"customer_phone":  repair.Customer.Phone,
			"brand":           repair.Brand,
			"model":           repair.Model,
			"description":     repair.Description,
			"access_password": repair.AccessPassword,
			"revision":        repair.Revision,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *repairRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&entity.Repair{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *repairRepository) DeleteBySale(ctx context.Context, saleID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Repair{}, "sale_id = ?", saleID).Error
}
