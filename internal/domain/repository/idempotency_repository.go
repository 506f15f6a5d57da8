package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves a live idempotency key by its key string and user ID
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Reserve claims the key for an in-flight request. It returns false when a
	// live row already holds the key; an expired row is taken over.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Complete stores the response of a reserved key
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release drops a reservation that never completed so the key can be retried
	Release(ctx context.Context, key string, userID uuid.UUID) error
	// DeleteExpired removes expired idempotency keys (for cleanup)
	DeleteExpired(ctx context.Context) (int64, error)
}
