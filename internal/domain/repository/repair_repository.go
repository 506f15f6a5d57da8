package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

// RepairRepository defines the interface for repair ticket data operations
type RepairRepository interface {
	CreateBatch(ctx context.Context, repairs []entity.Repair) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Repair, error)
	List(ctx context.Context, params *RepairFilterParams) ([]entity.Repair, int64, error)
	// UpdateStatusIf sets status to `to` only while the current status equals `from`.
	// Returns false when no row matched (missing ticket or different status).
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enum.RepairStatus) (bool, error)
	// SetStatus writes status unconditionally, with an optional revision note.
	// Returns false when the ticket does not exist.
	SetStatus(ctx context.Context, id uuid.UUID, status enum.RepairStatus, revision *string) (bool, error)
	// UpdateDetails rewrites the descriptive fields of a ticket; status is untouched.
	UpdateDetails(ctx context.Context, repair *entity.Repair) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteBySale(ctx context.Context, saleID uuid.UUID) error
}

// RepairSort selects the ordering of repair listings
type RepairSort string

const (
	RepairSortNewest          RepairSort = "created_at DESC"
	RepairSortRecentlyUpdated RepairSort = "updated_at DESC"
)

// RepairFilterParams contains filtering parameters for repair queries.
// A nil Pagination returns every match.
type RepairFilterParams struct {
	Pagination *pagination.PaginationParams
	Statuses   []enum.RepairStatus
	Exclude    []enum.RepairStatus
	SaleID     *uuid.UUID
	Search     string
	Sort       RepairSort
}
