package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/apperror"
	"github.com/sangkips/repairshop-api/pkg/pagination"
	"go.uber.org/zap"
)

// RepairService drives repair tickets through received -> in_progress -> completed -> delivered
type RepairService struct {
	repairRepo repository.RepairRepository
	saleRepo   repository.SaleRepository
	logger     *zap.Logger
}

// NewRepairService creates a new repair service
func NewRepairService(repairRepo repository.RepairRepository, saleRepo repository.SaleRepository, logger *zap.Logger) *RepairService {
	return &RepairService{
		repairRepo: repairRepo,
		saleRepo:   saleRepo,
		logger:     logger,
	}
}

// UpdateRepairInput carries the editable descriptive fields of a ticket
type UpdateRepairInput struct {
	CustomerName   *string
	CustomerPhone  *string
	Brand          *string
	Model          *string
	Description    *string
	AccessPassword *string
	Revision       *string
}

// ListActive returns tickets still in the workshop (neither completed nor delivered)
func (s *RepairService) ListActive(ctx context.Context) ([]entity.Repair, error) {
	repairs, _, err := s.repairRepo.List(ctx, &repository.RepairFilterParams{
		Exclude: []enum.RepairStatus{enum.RepairStatusCompleted, enum.RepairStatusDelivered},
		Sort:    repository.RepairSortNewest,
	})
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	return repairs, nil
}

// ListDeliverable returns completed tickets waiting to be handed over
func (s *RepairService) ListDeliverable(ctx context.Context) ([]entity.Repair, error) {
	repairs, _, err := s.repairRepo.List(ctx, &repository.RepairFilterParams{
		Statuses: []enum.RepairStatus{enum.RepairStatusCompleted},
		Sort:     repository.RepairSortRecentlyUpdated,
	})
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	return repairs, nil
}

// ListAll returns the paginated ticket history
func (s *RepairService) ListAll(ctx context.Context, params *repository.RepairFilterParams) (*pagination.PaginatedResult[entity.Repair], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	repairs, total, err := s.repairRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(repairs, pag), nil
}

// GetRepair retrieves a ticket by ID
func (s *RepairService) GetRepair(ctx context.Context, id uuid.UUID) (*entity.Repair, error) {
	repair, err := s.repairRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if repair == nil {
		return nil, apperror.NewNotFoundError("Repair")
	}
	return repair, nil
}

// MarkDelivered hands a completed ticket over to the customer. The status is
// switched with a conditional update so a ticket in any other state is left untouched.
func (s *RepairService) MarkDelivered(ctx context.Context, id uuid.UUID) (*entity.Repair, error) {
	updated, err := s.repairRepo.UpdateStatusIf(ctx, id, enum.RepairStatusCompleted, enum.RepairStatusDelivered)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}

	if !updated {
		repair, err := s.GetRepair(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperror.NewBadRequestError("Repair is not ready for delivery: status is " + repair.Status.String())
	}

	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.completeSale(ctx, repair.SaleID); err != nil {
		return nil, err
	}
	return repair, nil
}

// PatchStatus writes any lifecycle status directly, with an optional revision note.
// Callers gate who may use it; the state machine itself does not.
func (s *RepairService) PatchStatus(ctx context.Context, id uuid.UUID, status enum.RepairStatus, revision *string) (*entity.Repair, error) {
	if !status.IsValid() {
		return nil, apperror.NewFieldError("status", "Invalid repair status: "+status.String())
	}

	updated, err := s.repairRepo.SetStatus(ctx, id, status, revision)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if !updated {
		return nil, apperror.NewNotFoundError("Repair")
	}

	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == enum.RepairStatusDelivered {
		if err := s.completeSale(ctx, repair.SaleID); err != nil {
			return nil, err
		}
	}
	return repair, nil
}

// UpdateDetails edits customer and device fields; status is never changed here
func (s *RepairService) UpdateDetails(ctx context.Context, id uuid.UUID, input *UpdateRepairInput) (*entity.Repair, error) {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CustomerName != nil {
		repair.Customer.Name = *input.CustomerName
	}
	if input.CustomerPhone != nil {
		repair.Customer.Phone = *input.CustomerPhone
	}
	if input.Brand != nil {
		repair.Brand = *input.Brand
	}
	if input.Model != nil {
		repair.Model = *input.Model
	}
	if input.Description != nil {
		repair.Description = *input.Description
	}
	if input.AccessPassword != nil {
		repair.AccessPassword = *input.AccessPassword
	}
	if input.Revision != nil {
		repair.Revision = *input.Revision
	}

	updated, err := s.repairRepo.UpdateDetails(ctx, repair)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if !updated {
		return nil, apperror.NewNotFoundError("Repair")
	}
	return s.GetRepair(ctx, id)
}

// DeleteRepair removes a ticket permanently. The sale is checked again
// afterwards: if every ticket left is delivered it becomes completed.
func (s *RepairService) DeleteRepair(ctx context.Context, id uuid.UUID) error {
	repair, err := s.GetRepair(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.repairRepo.Delete(ctx, id)
	if err != nil {
		return apperror.NewStorageError(err)
	}
	if !deleted {
		return apperror.NewNotFoundError("Repair")
	}
	return s.completeSale(ctx, repair.SaleID)
}

// completeSale re-checks every sibling ticket at write time and settles the
// sale once all of them are delivered. It runs after each delivery, so the
// order in which siblings are delivered does not matter. A failure leaves the
// ticket delivered and the sale pending; re-patching the ticket as delivered
// runs the check again.
func (s *RepairService) completeSale(ctx context.Context, saleID uuid.UUID) error {
	completed, err := s.saleRepo.CompleteIfAllDelivered(ctx, saleID)
	if err != nil {
		s.logger.Error("sale completion check failed", zap.String("sale_id", saleID.String()), zap.Error(err))
		return apperror.NewStorageError(err)
	}
	if completed {
		s.logger.Info("sale completed, all repairs delivered", zap.String("sale_id", saleID.String()))
	}
	return nil
}
