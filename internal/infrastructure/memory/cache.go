package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
)

type reportCacheRepository struct {
	s *Store
}

func (r *reportCacheRepository) Get(_ context.Context, key string) (*entity.ReportCache, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entry, ok := r.s.reportCache[key]
	if !ok || entry.IsExpired(r.s.cacheTTL, r.s.now()) {
		return nil, nil
	}
	return &entry, nil
}

func (r *reportCacheRepository) Upsert(_ context.Context, entry *entity.ReportCache) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.reportCache[entry.Key]; ok {
		entry.ID = existing.ID
	} else if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = r.s.now()
	r.s.reportCache[entry.Key] = *entry
	return nil
}

func (r *reportCacheRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	var removed int64
	for key, entry := range r.s.reportCache {
		if entry.IsExpired(r.s.cacheTTL, now) {
			delete(r.s.reportCache, key)
			removed++
		}
	}
	return removed, nil
}

type idempotencyRepository struct {
	s *Store
}

func idempotencyIndex(key string, userID uuid.UUID) string {
	return userID.String() + "|" + key
}

func (r *idempotencyRepository) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ikey, ok := r.s.idempotency[idempotencyIndex(key, userID)]
	if !ok || !r.s.now().Before(ikey.ExpiresAt) {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Reserve(_ context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	index := idempotencyIndex(ikey.Key, ikey.UserID)
	now := r.s.now()
	if current, ok := r.s.idempotency[index]; ok && now.Before(current.ExpiresAt) {
		return false, nil
	}

	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = now
	r.s.idempotency[index] = *ikey
	return true, nil
}

func (r *idempotencyRepository) Complete(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	index := idempotencyIndex(ikey.Key, ikey.UserID)
	current, ok := r.s.idempotency[index]
	if !ok {
		return nil
	}
	current.ResponseCode = ikey.ResponseCode
	current.ResponseBody = ikey.ResponseBody
	current.ExpiresAt = ikey.ExpiresAt
	r.s.idempotency[index] = current
	return nil
}

func (r *idempotencyRepository) Release(_ context.Context, key string, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	index := idempotencyIndex(key, userID)
	if current, ok := r.s.idempotency[index]; ok && current.InFlight() {
		delete(r.s.idempotency, index)
	}
	return nil
}

func (r *idempotencyRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	var removed int64
	for k, ikey := range r.s.idempotency {
		if !now.Before(ikey.ExpiresAt) {
			delete(r.s.idempotency, k)
			removed++
		}
	}
	return removed, nil
}
