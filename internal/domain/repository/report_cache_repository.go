package repository

import (
	"context"

	"github.com/sangkips/repairshop-api/internal/domain/entity"
)

// ReportCacheRepository stores computed reports for a bounded time-to-live.
// Implementations own expiry: Get never returns an entry older than the TTL.
type ReportCacheRepository interface {
	Get(ctx context.Context, key string) (*entity.ReportCache, error)
	// Upsert overwrites any entry with the same key and restarts its TTL
	Upsert(ctx context.Context, entry *entity.ReportCache) error
	// DeleteExpired physically removes stale entries and reports how many went
	DeleteExpired(ctx context.Context) (int64, error)
}
