package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/pkg/apperror"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ProductInput represents the create and update product input
type ProductInput struct {
	Title         string
	Code          string
	Type          enum.ProductType
	PurchasePrice float64
	SalePrice     float64
	Stock         int
	PurchaseDate  *time.Time
}

func (in *ProductInput) validate() error {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(in.Title) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "title", Message: "title is required"})
	}
	if in.Type == "" {
		in.Type = enum.ProductTypeProduct
	}
	if !in.Type.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "type", Message: "type must be product or service"})
	}
	if in.PurchasePrice < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "purchase_price", Message: "purchase_price must not be negative"})
	}
	if in.SalePrice < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "sale_price", Message: "sale_price must not be negative"})
	}
	if in.Stock < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "stock", Message: "stock must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

func (in *ProductInput) apply(p *entity.Product) {
	p.Title = strings.TrimSpace(in.Title)
	p.Code = strings.TrimSpace(in.Code)
	p.Type = in.Type
	p.PurchasePrice = in.PurchasePrice
	p.SalePrice = in.SalePrice
	p.PurchaseDate = in.PurchaseDate
	// services carry no stock
	if in.Type == enum.ProductTypeService {
		p.Stock = 0
	} else {
		p.Stock = in.Stock
	}
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &entity.Product{}
	input.apply(product)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperror.NewStorageError(err)
	}
	return s.GetProduct(ctx, product.ID)
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, apperror.NewStorageError(err)
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProduct replaces the editable fields of a product. A stock edit is
// applied as the difference from the stock that was read, so sales settled
// in the meantime keep their decrement.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	stockRead := product.Stock
	input.apply(product)

	if delta := product.Stock - stockRead; delta != 0 {
		failedIDs, err := s.productRepo.AdjustStockBatch(ctx, map[uuid.UUID]int{id: -delta})
		if err != nil {
			return nil, apperror.NewStorageError(err)
		}
		if len(failedIDs) > 0 {
			return nil, apperror.NewConflictError(fmt.Sprintf("Stock of %s changed while it was being edited", product.Title))
		}
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, apperror.NewStorageError(err)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct soft deletes a product; past sales keep their line snapshots
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return apperror.NewStorageError(err)
	}
	if !deleted {
		return apperror.NewNotFoundError("Product")
	}
	return nil
}
