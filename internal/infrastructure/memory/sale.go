package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

type saleRepository struct {
	s *Store
}

func (r *saleRepository) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.sales {
		if existing.SaleCode == sale.SaleCode {
			return domainRepo.ErrDuplicateKey
		}
	}

	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	now := r.s.now()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	sale.UpdatedAt = now
	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
		sale.Items[i].SaleID = sale.ID
		sale.Items[i].Position = i
	}

	r.s.sales[sale.ID] = copySale(*sale)
	return nil
}

func (r *saleRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sale, ok := r.s.sales[id]
	if !ok || softDeleted(sale.DeletedAt) {
		return nil, nil
	}
	out := copySale(sale)
	return &out, nil
}

func (r *saleRepository) GetByCode(_ context.Context, saleCode string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, sale := range r.s.sales {
		if sale.SaleCode == saleCode && !softDeleted(sale.DeletedAt) {
			out := copySale(sale)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *saleRepository) List(_ context.Context, params *domainRepo.SaleFilterParams) ([]entity.Sale, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.Sale
	for _, sale := range r.s.sales {
		if softDeleted(sale.DeletedAt) {
			continue
		}
		if params.Status != nil && sale.Status != *params.Status {
			continue
		}
		if !params.Range.Contains(sale.CreatedAt) {
			continue
		}
		if params.Search != "" && !containsFold(sale.SaleCode, params.Search) && !containsFold(sale.Username, params.Search) {
			continue
		}
		matched = append(matched, copySale(sale))
	}

	slices.SortFunc(matched, func(a, b entity.Sale) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := int64(len(matched))
	if params.Pagination != nil {
		matched = pagination.Window(matched, params.Pagination)
	}
	return matched, total, nil
}

func (r *saleRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sale, ok := r.s.sales[id]
	if !ok || softDeleted(sale.DeletedAt) {
		return false, nil
	}
	sale.DeletedAt = r.s.deletedAt()
	r.s.sales[id] = sale
	return true, nil
}

func (r *saleRepository) ReplaceItems(_ context.Context, sale *entity.Sale) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.sales[sale.ID]
	if !ok || softDeleted(current.DeletedAt) {
		return false, nil
	}

	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
		sale.Items[i].SaleID = sale.ID
		sale.Items[i].Position = i
	}
	current.Items = sale.Items
	current.Total = sale.Total
	current.TotalNet = sale.TotalNet
	current.TotalTax = sale.TotalTax
	current.Status = sale.Status
	current.UpdatedAt = r.s.now()
	sale.UpdatedAt = current.UpdatedAt

	r.s.sales[sale.ID] = copySale(current)
	return true, nil
}

func (r *saleRepository) CompleteIfAllDelivered(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sale, ok := r.s.sales[id]
	if !ok || softDeleted(sale.DeletedAt) || sale.Status != enum.SaleStatusPending {
		return false, nil
	}
	for _, repair := range r.s.repairs {
		if repair.SaleID == id && repair.Status != enum.RepairStatusDelivered {
			return false, nil
		}
	}

	sale.Status = enum.SaleStatusCompleted
	sale.UpdatedAt = r.s.now()
	r.s.sales[id] = sale
	return true, nil
}
