package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/repairshop-api/internal/application/service"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/request"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/response"
	"github.com/sangkips/repairshop-api/pkg/utils"
)

// SaleHandler handles checkout and sale history requests
type SaleHandler struct {
	saleService *service.SaleService
	loc         *time.Location
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService, loc *time.Location) *SaleHandler {
	return &SaleHandler{saleService: saleService, loc: loc}
}

// Create handles a checkout
// @Summary Create Sale
// @Description Settle a cart; service lines open one repair ticket each
// @Tags sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for retried submissions"
// @Param request body request.CreateSaleRequest true "Cart"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	saleCode := strings.TrimSpace(req.SaleCode)
	if saleCode == "" {
		saleCode = utils.GenerateSaleCode(time.Now().In(h.loc))
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), &service.CreateSaleInput{
		SaleCode: saleCode,
		UserID:   *userID,
		Username: GetUsername(c),
		Items:    saleItemsFrom(req.Items),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale created successfully", sale)
}

// Update handles replacing the lines of a sale
// @Summary Update Sale
// @Description Replace the cart of a sale; stock moves by the difference and repair tickets are reopened
// @Tags sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Sale ID"
// @Param request body request.UpdateSaleRequest true "Cart"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /sales/{id} [put]
func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "sale")
	if !ok {
		return
	}

	var req request.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	sale, err := h.saleService.UpdateSale(c.Request.Context(), id, &service.UpdateSaleInput{
		Items: saleItemsFrom(req.Items),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale updated successfully", sale)
}

func saleItemsFrom(lines []request.SaleItemRequest) []service.SaleItemInput {
	items := make([]service.SaleItemInput, len(lines))
	for i, item := range lines {
		items[i] = service.SaleItemInput{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
		}
		if info := item.ServiceInfo; info != nil {
			items[i].ServiceInfo = &entity.ServiceInfo{
				CustomerName:   info.CustomerName,
				CustomerPhone:  info.CustomerPhone,
				Brand:          info.Brand,
				Model:          info.Model,
				Description:    info.Description,
				AccessPassword: info.AccessPassword,
			}
		}
	}
	return items
}

// List handles listing sales, newest first
func (h *SaleHandler) List(c *gin.Context) {
	var filter request.SaleFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	rng, err := dateFilter(filter.From, filter.To, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	params := &repository.SaleFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Search:     filter.Search,
		Range:      rng,
	}
	if filter.Status != "" {
		status := enum.SaleStatus(filter.Status)
		params.Status = &status
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "Sales retrieved successfully", result)
}

// Get handles getting a single sale with its lines
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// Delete handles voiding a sale
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "sale")
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
