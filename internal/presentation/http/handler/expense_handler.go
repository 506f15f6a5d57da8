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

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	loc            *time.Location
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *service.ExpenseService, loc *time.Location) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, loc: loc}
}

// List handles listing expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	var filter request.ExpenseFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	rng, err := dateFilter(filter.From, filter.To, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	params := &repository.ExpenseFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Range:      rng,
	}
	if filter.Type != "" {
		t := enum.ExpenseType(filter.Type)
		params.Type = &t
	}

	result, err := h.expenseService.ListExpenses(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "Expenses retrieved successfully", result)
}

// Create handles recording an expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req request.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	date, err := parseDate("date", req.Date, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}

	input := &service.CreateExpenseInput{
		Type:        enum.ExpenseType(req.Type),
		Title:       req.Title,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		Category:    req.Category,
	}
	if userID := GetUserID(c); userID != nil {
		input.CreatedBy = *userID
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Expense created successfully", expense)
}

// Delete handles deleting an expense
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "expense")
	if !ok {
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
