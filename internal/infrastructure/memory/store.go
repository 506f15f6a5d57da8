// Package memory keeps every repository in process memory behind one lock.
// It backs the memory driver used for demos and for service tests.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"gorm.io/gorm"
)

// Store holds all rows. Repository views share its lock so that
// multi-table checks (sale completion) observe one consistent state.
type Store struct {
	mu sync.RWMutex

	products    map[uuid.UUID]entity.Product
	sales       map[uuid.UUID]entity.Sale
	repairs     map[uuid.UUID]entity.Repair
	expenses    map[uuid.UUID]entity.Expense
	users       map[uuid.UUID]entity.User
	reportCache map[string]entity.ReportCache
	idempotency map[string]entity.IdempotencyKey

	cacheTTL time.Duration
	now      func() time.Time
}

// Option customizes a Store
type Option func(*Store)

// WithClock replaces time.Now, used to age cache entries in tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithReportCacheTTL sets how long report cache entries stay readable
func WithReportCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.cacheTTL = ttl
	}
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		products:    make(map[uuid.UUID]entity.Product),
		sales:       make(map[uuid.UUID]entity.Sale),
		repairs:     make(map[uuid.UUID]entity.Repair),
		expenses:    make(map[uuid.UUID]entity.Expense),
		users:       make(map[uuid.UUID]entity.User),
		reportCache: make(map[string]entity.ReportCache),
		idempotency: make(map[string]entity.IdempotencyKey),
		cacheTTL:    5 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Products() domainRepo.ProductRepository { return &productRepository{s} }

func (s *Store) Sales() domainRepo.SaleRepository { return &saleRepository{s} }

func (s *Store) Repairs() domainRepo.RepairRepository { return &repairRepository{s} }

func (s *Store) Expenses() domainRepo.ExpenseRepository { return &expenseRepository{s} }

func (s *Store) Users() domainRepo.UserRepository { return &userRepository{s} }

func (s *Store) Analytics() domainRepo.AnalyticsRepository { return &analyticsRepository{s} }

func (s *Store) ReportCache() domainRepo.ReportCacheRepository { return &reportCacheRepository{s} }

func (s *Store) Idempotency() domainRepo.IdempotencyRepository { return &idempotencyRepository{s} }

func softDeleted(at gorm.DeletedAt) bool {
	return at.Valid
}

func (s *Store) deletedAt() gorm.DeletedAt {
	return gorm.DeletedAt{Time: s.now(), Valid: true}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func copySale(sale entity.Sale) entity.Sale {
	items := make([]entity.SaleItem, len(sale.Items))
	for i, item := range sale.Items {
		if item.ServiceInfo != nil {
			info := *item.ServiceInfo
			item.ServiceInfo = &info
		}
		items[i] = item
	}
	sale.Items = items
	return sale
}
