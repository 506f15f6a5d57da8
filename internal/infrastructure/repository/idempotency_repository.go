package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND user_id = ? AND expires_at > ?", key, userID, time.Now()).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

// Reserve inserts the in-flight row. On a key clash the row is only taken over
// when it has expired; a live row leaves zero rows affected.
func (r *idempotencyRepository) Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"endpoint", "request_hash", "response_code", "response_body", "created_at", "expires_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "idempotency_keys.expires_at <= ?", Vars: []interface{}{time.Now()}},
		}},
	}).Create(ikey)
	return result.RowsAffected > 0, result.Error
}

func (r *idempotencyRepository) Complete(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.db.WithContext(ctx).
		Model(&entity.IdempotencyKey{}).
		Where("key = ? AND user_id = ?", ikey.Key, ikey.UserID).
		Updates(map[string]interface{}{
			"response_code": ikey.ResponseCode,
			"response_body": ikey.ResponseBody,
			"expires_at":    ikey.ExpiresAt,
		}).Error
}

func (r *idempotencyRepository) Release(ctx context.Context, key string, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("key = ? AND user_id = ? AND response_code = 0", key, userID).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
