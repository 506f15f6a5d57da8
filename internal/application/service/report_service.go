package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"go.uber.org/zap"
)

// ReportService serves financial reports through a read-through cache
type ReportService struct {
	analytics   repository.AnalyticsRepository
	productRepo repository.ProductRepository
	cache       repository.ReportCacheRepository
	loc         *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

// ReportOption customizes a ReportService
type ReportOption func(*ReportService)

// WithReportClock replaces time.Now when resolving periods and stamping results
func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) {
		s.now = now
	}
}

// NewReportService creates a new report service. loc is the shop's timezone
// and decides where calendar days and months begin.
func NewReportService(
	analytics repository.AnalyticsRepository,
	productRepo repository.ProductRepository,
	cache repository.ReportCacheRepository,
	loc *time.Location,
	logger *zap.Logger,
	opts ...ReportOption,
) *ReportService {
	s := &ReportService{
		analytics:   analytics,
		productRepo: productRepo,
		cache:       cache,
		loc:         loc,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cacheParams is the raw selector as stored with a cache entry; absent fields are null
type cacheParams struct {
	From  *string `json:"from"`
	To    *string `json:"to"`
	Year  *string `json:"year"`
	Month *string `json:"month"`
}

func paramsOf(sel ReportSelector) cacheParams {
	opt := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}
	return cacheParams{From: opt(sel.From), To: opt(sel.To), Year: opt(sel.Year), Month: opt(sel.Month)}
}

// ReportCacheKey is the stable cache key of a selector
func ReportCacheKey(sel ReportSelector) string {
	data, _ := json.Marshal(paramsOf(sel.normalized()))
	return "reports:" + string(data)
}

// GetReport returns the cached report of the selector when one is still fresh,
// otherwise computes it and stores it. Cache failures are logged and ignored.
func (s *ReportService) GetReport(ctx context.Context, sel ReportSelector) (*ReportResult, error) {
	sel = sel.normalized()
	period, err := ResolvePeriod(sel, s.loc, s.now())
	if err != nil {
		return nil, err
	}

	key := ReportCacheKey(sel)
	if cached := s.cacheGet(ctx, key); cached != nil {
		cached.Cached = true
		return cached, nil
	}

	result, err := s.Compute(ctx, period)
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, key, sel, result)
	result.Cached = false
	return result, nil
}

func (s *ReportService) cacheGet(ctx context.Context, key string) *ReportResult {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if entry == nil {
		return nil
	}

	var result ReportResult
	if err := json.Unmarshal([]byte(entry.Result), &result); err != nil {
		s.logger.Warn("report cache entry unreadable", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &result
}

func (s *ReportService) cachePut(ctx context.Context, key string, sel ReportSelector, result *ReportResult) {
	stored := *result
	stored.Cached = false

	payload, err := json.Marshal(&stored)
	if err != nil {
		s.logger.Warn("report not cacheable", zap.String("key", key), zap.Error(err))
		return
	}
	params, _ := json.Marshal(paramsOf(sel))

	entry := &entity.ReportCache{
		Key:    key,
		Params: string(params),
		Result: string(payload),
	}
	if err := s.cache.Upsert(ctx, entry); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
