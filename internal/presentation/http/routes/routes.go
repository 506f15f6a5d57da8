package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/repairshop-api/internal/config"
	"github.com/sangkips/repairshop-api/internal/domain/policy"
	domainRepo "github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/internal/presentation/http/handler"
	"github.com/sangkips/repairshop-api/internal/presentation/http/middleware"
	"github.com/sangkips/repairshop-api/pkg/utils"
	"go.uber.org/zap"
)

// APIPrefix is the mount point of every versioned route
const APIPrefix = "/api/v1"

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Sale    *handler.SaleHandler
	Repair  *handler.RepairHandler
	Report  *handler.ReportHandler
	Expense *handler.ExpenseHandler
	User    *handler.UserHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Policy          policy.Table
	Logger          *zap.Logger
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *middleware.UserRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	limit := func(c *gin.Context) { c.Next() }
	if deps.RateLimiter != nil {
		limit = deps.RateLimiter.Middleware()
	}

	v1 := router.Group(APIPrefix)
	{
		// Public routes
		v1.POST("/auth/login", limit, h.Auth.Login)

		// Protected routes: the segment of each matched route is checked against the policy table
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(limit)
		protected.Use(middleware.Authorize(deps.Policy, APIPrefix))

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/auth/me", h.Auth.Me)
	protected.PUT("/auth/password", h.Auth.ChangePassword)

	registerProductRoutes(protected, h, deps)
	registerSaleRoutes(protected, h, deps)
	registerRepairRoutes(protected, h)
	registerDeliveryRoutes(protected, h)

	protected.GET("/reports", h.Report.Get)

	registerExpenseRoutes(protected, h)
	registerUserRoutes(protected, h)
}

// products are readable by every signed-in user; changes belong to inventory
func registerProductRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	products := protected.Group("/products")
	inventory := middleware.RequireSegment(deps.Policy, policy.SegmentInventory)
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
		products.POST("", inventory, h.Product.Create)
		products.PUT("/:id", inventory, h.Product.Update)
		products.DELETE("/:id", inventory, h.Product.Delete)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	sales := protected.Group("/sales")
	{
		sales.GET("", h.Sale.List)
		// Retried checkouts carrying the same Idempotency-Key replay the first response
		sales.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}), h.Sale.Create)
		sales.GET("/:id", h.Sale.Get)
		sales.PUT("/:id", h.Sale.Update)
		sales.DELETE("/:id", h.Sale.Delete)
	}
}

func registerRepairRoutes(protected *gin.RouterGroup, h *Handlers) {
	repairs := protected.Group("/repairs")
	{
		repairs.GET("", h.Repair.ListActive)
		repairs.GET("/history", h.Repair.History)
		repairs.GET("/:id", h.Repair.Get)
		repairs.PUT("/:id", h.Repair.Update)
		repairs.PATCH("/:id/status", h.Repair.PatchStatus)
		repairs.DELETE("/:id", h.Repair.Delete)
	}
}

func registerDeliveryRoutes(protected *gin.RouterGroup, h *Handlers) {
	deliveries := protected.Group("/deliveries")
	{
		deliveries.GET("", h.Repair.ListDeliverable)
		deliveries.PUT("/:id", h.Repair.MarkDelivered)
	}
}

func registerExpenseRoutes(protected *gin.RouterGroup, h *Handlers) {
	expenses := protected.Group("/expenses")
	{
		expenses.GET("", h.Expense.List)
		expenses.POST("", h.Expense.Create)
		expenses.DELETE("/:id", h.Expense.Delete)
	}
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/roles", h.User.ListRoles)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id/roles", h.User.UpdateRoles)
		users.DELETE("/:id", h.User.Delete)
	}
}
