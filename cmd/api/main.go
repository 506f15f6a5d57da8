package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/repairshop-api/internal/application/service"
	"github.com/sangkips/repairshop-api/internal/config"
	"github.com/sangkips/repairshop-api/internal/domain/policy"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/internal/infrastructure/cache"
	"github.com/sangkips/repairshop-api/internal/infrastructure/database"
	"github.com/sangkips/repairshop-api/internal/infrastructure/memory"
	"github.com/sangkips/repairshop-api/internal/infrastructure/repository"
	"github.com/sangkips/repairshop-api/internal/presentation/http/handler"
	"github.com/sangkips/repairshop-api/internal/presentation/http/middleware"
	"github.com/sangkips/repairshop-api/internal/presentation/http/routes"
	"github.com/sangkips/repairshop-api/pkg/logger"
	"github.com/sangkips/repairshop-api/pkg/utils"
	"go.uber.org/zap"
)

// repositories is the storage the services run on
type repositories struct {
	users       domainRepo.UserRepository
	products    domainRepo.ProductRepository
	sales       domainRepo.SaleRepository
	repairs     domainRepo.RepairRepository
	expenses    domainRepo.ExpenseRepository
	analytics   domainRepo.AnalyticsRepository
	reportCache domainRepo.ReportCacheRepository
	idempotency domainRepo.IdempotencyRepository
	close       func()
}

func main() {
	cfg := config.Load()

	log := logger.NewZapLogger(logger.Config{
		IsDevelopment: cfg.App.IsDevelopment(),
		Encoding:      cfg.Log.Encoding,
		Level:         cfg.Log.Level,
	})
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, err := openRepositories(cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer repos.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.SeedAdmin(ctx, repos.users, cfg.Admin.Username, cfg.Admin.Password, log); err != nil {
		log.Warn("Failed to seed admin user", zap.Error(err))
	}

	loc := cfg.App.Location()
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.App.Name)

	// Initialize services
	authService := service.NewAuthService(repos.users, jwtManager)
	productService := service.NewProductService(repos.products)
	saleService := service.NewSaleService(repos.products, repos.sales, repos.repairs, cfg.Sales.TaxRate, log)
	repairService := service.NewRepairService(repos.repairs, repos.sales, log)
	reportService := service.NewReportService(repos.analytics, repos.products, repos.reportCache, loc, log)
	expenseService := service.NewExpenseService(repos.expenses)
	userService := service.NewUserService(repos.users)

	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Product: handler.NewProductHandler(productService, loc),
		Sale:    handler.NewSaleHandler(saleService, loc),
		Repair:  handler.NewRepairHandler(repairService),
		Report:  handler.NewReportHandler(reportService),
		Expense: handler.NewExpenseHandler(expenseService, loc),
		User:    handler.NewUserHandler(userService),
	}

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repos.idempotency,
		Policy:          policy.DefaultTable(),
		Logger:          log,
		RateLimiter:     rateLimiter,
	})

	go runJanitor(ctx, log, time.Minute, "report cache", repos.reportCache.DeleteExpired)
	go runJanitor(ctx, log, time.Hour, "idempotency keys", repos.idempotency.DeleteExpired)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server",
			zap.String("app", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("report_cache", cfg.ReportCache.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

// openRepositories wires the configured storage and report cache drivers
func openRepositories(cfg *config.Config, log *zap.Logger) (*repositories, error) {
	var repos *repositories

	switch cfg.Database.Driver {
	case "memory":
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.New(memory.WithReportCacheTTL(cfg.ReportCache.TTL))
		repos = &repositories{
			users:       store.Users(),
			products:    store.Products(),
			sales:       store.Sales(),
			repairs:     store.Repairs(),
			expenses:    store.Expenses(),
			analytics:   store.Analytics(),
			reportCache: store.ReportCache(),
			idempotency: store.Idempotency(),
			close:       func() {},
		}

	default:
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.IsDevelopment())
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db, log); err != nil {
			return nil, err
		}
		repos = &repositories{
			users:       repository.NewUserRepository(db),
			products:    repository.NewProductRepository(db),
			sales:       repository.NewSaleRepository(db),
			repairs:     repository.NewRepairRepository(db),
			expenses:    repository.NewExpenseRepository(db),
			analytics:   repository.NewAnalyticsRepository(db),
			reportCache: repository.NewReportCacheRepository(db, cfg.ReportCache.TTL),
			idempotency: repository.NewIdempotencyRepository(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}
	}

	switch cfg.ReportCache.Driver {
	case "redis":
		redisCache := cache.NewRedisReportCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.ReportCache.TTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("Redis unreachable, reports will be computed uncached until it recovers", zap.Error(err))
		}
		repos.reportCache = redisCache
		closeStore := repos.close
		repos.close = func() {
			_ = redisCache.Close()
			closeStore()
		}
	case "memory":
		if cfg.Database.Driver != "memory" {
			repos.reportCache = memory.New(memory.WithReportCacheTTL(cfg.ReportCache.TTL)).ReportCache()
		}
	}

	return repos, nil
}

// runJanitor removes expired rows on every tick until ctx is done
func runJanitor(ctx context.Context, log *zap.Logger, every time.Duration, name string, sweep func(context.Context) (int64, error)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sweep(ctx)
			if err != nil {
				log.Warn("Cleanup failed", zap.String("target", name), zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Debug("Removed expired entries", zap.String("target", name), zap.Int64("count", removed))
			}
		}
	}
}
