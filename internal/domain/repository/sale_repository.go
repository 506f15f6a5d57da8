package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	// Create persists the sale together with its items.
	// Returns ErrDuplicateKey when the sale code is already used.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByCode(ctx context.Context, saleCode string) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// ReplaceItems swaps the lines of an existing sale and writes its totals and
	// status in one transaction; false when the sale does not exist.
	ReplaceItems(ctx context.Context, sale *entity.Sale) (bool, error)
	// Delete soft-deletes the sale; false when it did not exist.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// CompleteIfAllDelivered moves a pending sale to completed in one conditional
	// update that re-checks, at write time, that no repair of the sale is undelivered.
	CompleteIfAllDelivered(ctx context.Context, id uuid.UUID) (bool, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.SaleStatus
	Range      *DateRange
}
