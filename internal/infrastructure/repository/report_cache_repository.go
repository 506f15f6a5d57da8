package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/repairshop-api/internal/domain/entity"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reportCacheRepository struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewReportCacheRepository creates a Postgres-backed report cache whose entries live for ttl
func NewReportCacheRepository(db *gorm.DB, ttl time.Duration) domainRepo.ReportCacheRepository {
	return &reportCacheRepository{db: db, ttl: ttl}
}

// Get hides entries older than the TTL even before the janitor removes them
func (r *reportCacheRepository) Get(ctx context.Context, key string) (*entity.ReportCache, error) {
	var entry entity.ReportCache
	err := r.db.WithContext(ctx).
		Where("key = ? AND created_at > ?", key, time.Now().Add(-r.ttl)).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &entry, err
}

func (r *reportCacheRepository) Upsert(ctx context.Context, entry *entity.ReportCache) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"params", "result", "created_at"}),
	}).Create(entry).Error
}

func (r *reportCacheRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at <= ?", time.Now().Add(-r.ttl)).
		Delete(&entity.ReportCache{})
	return result.RowsAffected, result.Error
}
