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

type repairRepository struct {
	s *Store
}

func (r *repairRepository) CreateBatch(_ context.Context, repairs []entity.Repair) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for i := range repairs {
		if repairs[i].ID == uuid.Nil {
			repairs[i].ID = uuid.New()
		}
		if repairs[i].Status == "" {
			repairs[i].Status = enum.RepairStatusReceived
		}
		repairs[i].CreatedAt = now
		repairs[i].UpdatedAt = now
		r.s.repairs[repairs[i].ID] = repairs[i]
	}
	return nil
}

func (r *repairRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Repair, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	repair, ok := r.s.repairs[id]
	if !ok {
		return nil, nil
	}
	return &repair, nil
}

func (r *repairRepository) List(_ context.Context, params *domainRepo.RepairFilterParams) ([]entity.Repair, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []entity.Repair
	for _, repair := range r.s.repairs {
		if len(params.Statuses) > 0 && !slices.Contains(params.Statuses, repair.Status) {
			continue
		}
		if slices.Contains(params.Exclude, repair.Status) {
			continue
		}
		if params.SaleID != nil && repair.SaleID != *params.SaleID {
			continue
		}
		if params.Search != "" && !matchesRepairSearch(repair, params.Search) {
			continue
		}
		matched = append(matched, repair)
	}

	if params.Sort == domainRepo.RepairSortRecentlyUpdated {
		slices.SortFunc(matched, func(a, b entity.Repair) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		})
	} else {
		slices.SortFunc(matched, func(a, b entity.Repair) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}

	total := int64(len(matched))
	if params.Pagination != nil {
		matched = pagination.Window(matched, params.Pagination)
	}
	return matched, total, nil
}

func matchesRepairSearch(repair entity.Repair, term string) bool {
	return containsFold(repair.SaleCode, term) ||
		containsFold(repair.Customer.Name, term) ||
		containsFold(repair.Brand, term) ||
		containsFold(repair.Model, term)
}

func (r *repairRepository) UpdateStatusIf(_ context.Context, id uuid.UUID, from, to enum.RepairStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	repair, ok := r.s.repairs[id]
	if !ok || repair.Status != from {
		return false, nil
	}
	repair.Status = to
	repair.UpdatedAt = r.s.now()
	r.s.repairs[id] = repair
	return true, nil
}

func (r *repairRepository) SetStatus(_ context.Context, id uuid.UUID, status enum.RepairStatus, revision *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	repair, ok := r.s.repairs[id]
	if !ok {
		return false, nil
	}
	repair.Status = status
	if revision != nil {
		repair.Revision = *revision
	}
	repair.UpdatedAt = r.s.now()
	r.s.repairs[id] = repair
	return true, nil
}

func (r *repairRepository) UpdateDetails(_ context.Context, repair *entity.Repair) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.repairs[repair.ID]
	if !ok {
		return false, nil
	}
	current.Customer = repair.Customer
	current.Brand = repair.Brand
	current.Model = repair.Model
	current.Description = repair.Description
	current.AccessPassword = repair.AccessPassword
	current.Revision = repair.Revision
	current.UpdatedAt = r.s.now()
	r.s.repairs[repair.ID] = current
	return true, nil
}

func (r *repairRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.repairs[id]; !ok {
		return false, nil
	}
	delete(r.s.repairs, id)
	return true, nil
}

func (r *repairRepository) DeleteBySale(_ context.Context, saleID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, repair := range r.s.repairs {
		if repair.SaleID == saleID {
			delete(r.s.repairs, id)
		}
	}
	return nil
}
