package repository

import (
	"errors"

	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/pagination"
	"gorm.io/gorm"
)

// Between returns a GORM scope limiting column to an inclusive date range.
// A nil range leaves the query unfiltered (all time).
func Between(column string, rng *domainRepo.DateRange) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if rng == nil {
			return db
		}
		return db.Where(column+" BETWEEN ? AND ?", rng.From, rng.To)
	}
}

// Paginate returns a GORM scope applying offset/limit; nil params fetch everything
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params == nil {
			return db
		}
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// translateError maps driver-level failures onto domain sentinels
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicateKey
	}
	return err
}
