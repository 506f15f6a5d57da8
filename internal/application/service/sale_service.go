package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/apperror"
	"github.com/sangkips/repairshop-api/pkg/pagination"
	"github.com/sangkips/repairshop-api/pkg/validator"
	"go.uber.org/zap"
)

// DefaultTaxRate is the VAT rate already included in every unit price
const DefaultTaxRate = 0.16

// SaleService composes sales: totals, stock and the repair tickets of service lines
type SaleService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	repairRepo  repository.RepairRepository
	taxRate     float64
	logger      *zap.Logger
}

// NewSaleService creates a new sale service
func NewSaleService(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	repairRepo repository.RepairRepository,
	taxRate float64,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		repairRepo:  repairRepo,
		taxRate:     taxRate,
		logger:      logger,
	}
}

// SaleItemInput represents one cart line
type SaleItemInput struct {
	ProductID   uuid.UUID
	Qty         int
	UnitPrice   float64
	ServiceInfo *entity.ServiceInfo
}

// CreateSaleInput represents the create sale input
type CreateSaleInput struct {
	SaleCode string
	UserID   uuid.UUID
	Username string
	Items    []SaleItemInput
}

// SplitTax decomposes a tax-inclusive price into its net and tax parts
func SplitTax(price, rate float64) (net, tax float64) {
	net = price / (1 + rate)
	return net, price - net
}

// CreateSale validates the cart, decrements stock and persists the sale
// followed by one repair ticket per service line
func (s *SaleService) CreateSale(ctx context.Context, input *CreateSaleInput) (*entity.Sale, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewFieldError("items", "At least one item is required")
	}
	input.SaleCode = strings.TrimSpace(input.SaleCode)
	if input.SaleCode == "" {
		return nil, apperror.NewFieldError("sale_code", "Sale code is required")
	}
	if input.UserID == uuid.Nil {
		return nil, apperror.NewFieldError("user", "Issuing user is required")
	}

	existing, err := s.saleRepo.GetByCode(ctx, input.SaleCode)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError(fmt.Sprintf("Sale code %s is already used", input.SaleCode))
	}

	sale := &entity.Sale{
		ID:       uuid.New(),
		SaleCode: input.SaleCode,
		UserID:   input.UserID,
		Username: input.Username,
	}
	cart, err := s.compose(ctx, sale.ID, input.Items)
	if err != nil {
		return nil, err
	}
	cart.applyTo(sale)

	// Early rejection against the stock we just read; the conditional
	// decrement below is what actually guards against overselling
	if failed := insufficient(cart.products, cart.stock); len(failed) > 0 {
		return nil, insufficientStockError(cart.products, failed)
	}

	if len(cart.stock) > 0 {
		failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, cart.stock)
		if err != nil {
			return nil, apperror.NewStorageError(err)
		}
		if len(failedIDs) > 0 {
			return nil, insufficientStockError(cart.products, failedIDs)
		}
	}

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		s.restoreStock(ctx, sale.SaleCode, cart.stock)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.NewConflictError(fmt.Sprintf("Sale code %s is already used", sale.SaleCode))
		}
		return nil, apperror.NewStorageError(err)
	}

	if err := s.openRepairs(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("sale_code", sale.SaleCode),
		zap.String("status", string(sale.Status)),
		zap.Float64("total", sale.Total),
	)
	return sale, nil
}

// UpdateSaleInput represents the replacement cart of an existing sale
type UpdateSaleInput struct {
	Items []SaleItemInput
}

// UpdateSale replaces the lines of a sale, recomputes its totals and moves
// stock by the difference between the old and the new product lines. Repair
// tickets are reopened from the new service lines, so a sale whose repairs
// have already left received can no longer be edited.
func (s *SaleService) UpdateSale(ctx context.Context, id uuid.UUID, input *UpdateSaleInput) (*entity.Sale, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewFieldError("items", "At least one item is required")
	}

	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	repairs, _, err := s.repairRepo.List(ctx, &repository.RepairFilterParams{SaleID: &sale.ID})
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	for _, repair := range repairs {
		if repair.Status != enum.RepairStatusReceived {
			return nil, apperror.NewBadRequestError(fmt.Sprintf(
				"Repair %s of sale %s is already %s; the sale can no longer be edited", repair.Title, sale.SaleCode, repair.Status))
		}
	}

	cart, err := s.compose(ctx, sale.ID, input.Items)
	if err != nil {
		return nil, err
	}

	deltas := stockDeltas(sale.Items, cart.stock)
	var short []uuid.UUID
	for productID, delta := range deltas {
		if delta > 0 && cart.products[productID].Stock < delta {
			short = append(short, productID)
		}
	}
	if len(short) > 0 {
		return nil, insufficientStockError(cart.products, short)
	}

	if len(deltas) > 0 {
		failedIDs, err := s.productRepo.AdjustStockBatch(ctx, deltas)
		if err != nil {
			return nil, apperror.NewStorageError(err)
		}
		if len(failedIDs) > 0 {
			return nil, insufficientStockError(cart.products, failedIDs)
		}
	}

	cart.applyTo(sale)
	replaced, err := s.saleRepo.ReplaceItems(ctx, sale)
	if err != nil || !replaced {
		s.revertAdjustment(ctx, sale.SaleCode, deltas)
		if err != nil {
			return nil, apperror.NewStorageError(err)
		}
		return nil, apperror.NewNotFoundError("Sale")
	}

	if err := s.repairRepo.DeleteBySale(ctx, sale.ID); err != nil {
		s.logger.Error("repair tickets not reset for updated sale", zap.String("sale_code", sale.SaleCode), zap.Error(err))
		return nil, apperror.NewStorageError(err)
	}
	if err := s.openRepairs(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale updated",
		zap.String("sale_code", sale.SaleCode),
		zap.Int("items", len(sale.Items)),
		zap.Int("stock_changes", len(deltas)),
	)
	return sale, nil
}

// cart is a validated list of sale lines with its totals
type cart struct {
	items    []entity.SaleItem
	total    float64
	totalNet float64
	totalTax float64
	status   enum.SaleStatus
	products map[uuid.UUID]*entity.Product
	// stock is the quantity each product line takes out of stock
	stock map[uuid.UUID]int
}

func (c *cart) applyTo(sale *entity.Sale) {
	sale.Items = c.items
	sale.Total = c.total
	sale.TotalNet = c.totalNet
	sale.TotalTax = c.totalTax
	sale.Status = c.status
}

// compose checks every line against its product and computes the tax-inclusive totals
func (s *SaleService) compose(ctx context.Context, saleID uuid.UUID, items []SaleItemInput) (*cart, error) {
	// Batch fetch all products in one query (prevents N+1)
	productIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}

	c := &cart{
		items:    make([]entity.SaleItem, 0, len(items)),
		status:   enum.SaleStatusCompleted,
		products: make(map[uuid.UUID]*entity.Product, len(products)),
		stock:    make(map[uuid.UUID]int),
	}
	for i := range products {
		c.products[products[i].ID] = &products[i]
	}

	for i, item := range items {
		product, exists := c.products[item.ProductID]
		if !exists {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}
		if item.Qty <= 0 {
			return nil, apperror.NewFieldError(fmt.Sprintf("items[%d].qty", i), fmt.Sprintf("Invalid quantity for %s", product.Title))
		}
		if item.UnitPrice < 0 {
			return nil, apperror.NewFieldError(fmt.Sprintf("items[%d].unit_price", i), fmt.Sprintf("Invalid price for %s", product.Title))
		}

		line := entity.SaleItem{
			ID:        uuid.New(),
			SaleID:    saleID,
			Position:  i,
			ProductID: product.ID,
			Title:     product.Title,
			Code:      product.Code,
			Type:      product.Type,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice * float64(item.Qty),
		}

		if product.IsService() {
			if err := checkServiceInfo(i, item.ServiceInfo); err != nil {
				return nil, err
			}
			info := *item.ServiceInfo
			line.ServiceInfo = &info
			c.status = enum.SaleStatusPending
		} else {
			c.stock[product.ID] += item.Qty
		}

		netUnit, taxUnit := SplitTax(item.UnitPrice, s.taxRate)
		c.total += line.LineTotal
		c.totalNet += netUnit * float64(item.Qty)
		c.totalTax += taxUnit * float64(item.Qty)
		c.items = append(c.items, line)
	}
	return c, nil
}

// stockDeltas is how much more stock each product needs once the previous
// product lines are replaced by next; negative amounts go back to stock
func stockDeltas(previous []entity.SaleItem, next map[uuid.UUID]int) map[uuid.UUID]int {
	deltas := make(map[uuid.UUID]int, len(next))
	for productID, qty := range next {
		deltas[productID] += qty
	}
	for _, item := range previous {
		if item.Type == enum.ProductTypeProduct {
			deltas[item.ProductID] -= item.Qty
		}
	}
	for productID, delta := range deltas {
		if delta == 0 {
			delete(deltas, productID)
		}
	}
	return deltas
}

// openRepairs creates the received tickets of the sale's service lines
func (s *SaleService) openRepairs(ctx context.Context, sale *entity.Sale) error {
	repairs := repairsFor(sale)
	if len(repairs) == 0 {
		return nil
	}
	if err := s.repairRepo.CreateBatch(ctx, repairs); err != nil {
		s.logger.Error("repair tickets not created for sale",
			zap.String("sale_code", sale.SaleCode),
			zap.Int("repairs", len(repairs)),
			zap.Error(err),
		)
		return apperror.NewStorageError(err)
	}
	return nil
}

// revertAdjustment moves stock back after a sale update could not be written
func (s *SaleService) revertAdjustment(ctx context.Context, saleCode string, deltas map[uuid.UUID]int) {
	if len(deltas) == 0 {
		return
	}
	reverse := make(map[uuid.UUID]int, len(deltas))
	for productID, delta := range deltas {
		reverse[productID] = -delta
	}
	failedIDs, err := s.productRepo.AdjustStockBatch(ctx, reverse)
	if err != nil || len(failedIDs) > 0 {
		s.logger.Error("stock not reverted after failed sale update, manual reconciliation needed",
			zap.String("sale_code", saleCode),
			zap.Int("short", len(failedIDs)),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("stock reverted after failed sale update", zap.String("sale_code", saleCode))
}

// restoreStock undoes the stock decrement of a sale that could not be written
func (s *SaleService) restoreStock(ctx context.Context, saleCode string, stockDecrements map[uuid.UUID]int) {
	if len(stockDecrements) == 0 {
		return
	}
	if err := s.productRepo.AtomicIncrementBatch(ctx, stockDecrements); err != nil {
		s.logger.Error("stock not restored after failed sale write, manual reconciliation needed",
			zap.String("sale_code", saleCode),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("stock restored after failed sale write", zap.String("sale_code", saleCode))
}

func checkServiceInfo(line int, info *entity.ServiceInfo) error {
	field := fmt.Sprintf("items[%d].service_info", line)
	if info == nil {
		return &apperror.AppError{
			Code:    400,
			Message: fmt.Sprintf("Service details are required for line %d", line+1),
			Errors:  []apperror.FieldError{{Field: field, Message: "service_info is required"}},
		}
	}
	if fieldErrors := validator.ValidateStruct(info, field); len(fieldErrors) > 0 {
		return &apperror.AppError{
			Code:    400,
			Message: fmt.Sprintf("Service details are incomplete for line %d", line+1),
			Errors:  fieldErrors,
		}
	}
	return nil
}

func insufficient(products map[uuid.UUID]*entity.Product, decrements map[uuid.UUID]int) []uuid.UUID {
	var failed []uuid.UUID
	for id, qty := range decrements {
		if products[id].Stock < qty {
			failed = append(failed, id)
		}
	}
	return failed
}

func insufficientStockError(products map[uuid.UUID]*entity.Product, failedIDs []uuid.UUID) *apperror.AppError {
	names := make([]string, 0, len(failedIDs))
	fieldErrors := make([]apperror.FieldError, 0, len(failedIDs))
	for _, id := range failedIDs {
		name := id.String()
		if product, ok := products[id]; ok {
			name = product.Title
		}
		names = append(names, name)
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: id.String(), Message: "Insufficient stock for " + name})
	}
	return &apperror.AppError{
		Code:    400,
		Message: "Insufficient stock for: " + strings.Join(names, ", "),
		Errors:  fieldErrors,
	}
}

// repairsFor opens one ticket per service line, snapshotting the line and sale code
func repairsFor(sale *entity.Sale) []entity.Repair {
	var repairs []entity.Repair
	for _, item := range sale.Items {
		if item.Type != enum.ProductTypeService || item.ServiceInfo == nil {
			continue
		}
		repairs = append(repairs, entity.Repair{
			SaleID:     sale.ID,
			SaleItemID: item.ID,
			SaleCode:   sale.SaleCode,
			ProductID:  item.ProductID,
			Title:      item.Title,
			Code:       item.Code,
			Customer: entity.Customer{
				Name:  item.ServiceInfo.CustomerName,
				Phone: item.ServiceInfo.CustomerPhone,
			},
			Brand:          item.ServiceInfo.Brand,
			Model:          item.ServiceInfo.Model,
			Description:    item.ServiceInfo.Description,
			AccessPassword: item.ServiceInfo.AccessPassword,
			Status:         enum.RepairStatusReceived,
		})
	}
	return repairs
}

// GetSale retrieves a sale with its items
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales, newest first
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

// DeleteSale removes a sale, puts its products back in stock and drops its repair tickets
func (s *SaleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.NewStorageError(err)
	}
	if sale == nil {
		return apperror.NewNotFoundError("Sale")
	}

	deleted, err := s.saleRepo.Delete(ctx, id)
	if err != nil {
		return apperror.NewStorageError(err)
	}
	if !deleted {
		return apperror.NewNotFoundError("Sale")
	}

	stockIncrements := make(map[uuid.UUID]int)
	for _, item := range sale.Items {
		if item.Type == enum.ProductTypeProduct {
			stockIncrements[item.ProductID] += item.Qty
		}
	}
	if len(stockIncrements) > 0 {
		if err := s.productRepo.AtomicIncrementBatch(ctx, stockIncrements); err != nil {
			s.logger.Error("stock not restored for deleted sale", zap.String("sale_code", sale.SaleCode), zap.Error(err))
			return apperror.NewStorageError(err)
		}
	}

	if err := s.repairRepo.DeleteBySale(ctx, id); err != nil {
		s.logger.Error("repair tickets not removed for deleted sale", zap.String("sale_code", sale.SaleCode), zap.Error(err))
		return apperror.NewStorageError(err)
	}

	return nil
}
