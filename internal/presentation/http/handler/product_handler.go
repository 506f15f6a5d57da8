package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/repairshop-api/internal/application/service"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/request"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/response"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
	loc            *time.Location
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, loc *time.Location) *ProductHandler {
	return &ProductHandler{productService: productService, loc: loc}
}

// List handles listing products, optionally searched by title or code
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Search:     filter.Search,
	}
	if filter.Type != "" {
		t := enum.ProductType(filter.Type)
		params.Type = &t
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "Products retrieved successfully", result)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	input, ok := h.bindProduct(c)
	if !ok {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "product")
	if !ok {
		return
	}
	input, ok := h.bindProduct(c)
	if !ok {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func (h *ProductHandler) bindProduct(c *gin.Context) (*service.ProductInput, bool) {
	var req request.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return nil, false
	}

	input := &service.ProductInput{
		Title:         req.Title,
		Code:          req.Code,
		Type:          enum.ProductType(req.Type),
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Stock:         req.Stock,
	}
	if req.PurchaseDate != "" {
		date, err := parseDate("purchase_date", req.PurchaseDate, h.loc)
		if err != nil {
			response.Error(c, err)
			return nil, false
		}
		input.PurchaseDate = &date
	}
	return input, true
}
