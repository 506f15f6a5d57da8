package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/repairshop-api/internal/application/service"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/policy"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/request"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/response"
)

// RepairHandler handles the workshop and delivery desk requests
type RepairHandler struct {
	repairService *service.RepairService
}

// NewRepairHandler creates a new repair handler
func NewRepairHandler(repairService *service.RepairService) *RepairHandler {
	return &RepairHandler{repairService: repairService}
}

// ListActive lists tickets still being worked on
func (h *RepairHandler) ListActive(c *gin.Context) {
	repairs, err := h.repairService.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repairs retrieved successfully", repairs)
}

// History lists every ticket, paginated and searchable
func (h *RepairHandler) History(c *gin.Context) {
	var filter request.RepairHistoryRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.RepairFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage),
		Search:     filter.Search,
		Sort:       repository.RepairSortNewest,
	}
	if filter.Status != "" {
		status, err := enum.ParseRepairStatus(filter.Status)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.Statuses = []enum.RepairStatus{status}
	}

	result, err := h.repairService.ListAll(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "Repairs retrieved successfully", result)
}

// Get handles getting a single ticket
func (h *RepairHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "repair")
	if !ok {
		return
	}

	repair, err := h.repairService.GetRepair(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair retrieved successfully", repair)
}

// Update edits customer and device details
func (h *RepairHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "repair")
	if !ok {
		return
	}

	var req request.UpdateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	repair, err := h.repairService.UpdateDetails(c.Request.Context(), id, &service.UpdateRepairInput{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Brand:          req.Brand,
		Model:          req.Model,
		Description:    req.Description,
		AccessPassword: req.AccessPassword,
		Revision:       req.Revision,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair updated successfully", repair)
}

// PatchStatus writes a ticket status directly. Technicians move tickets up to
// completed; only admins may mark a ticket delivered this way.
func (h *RepairHandler) PatchStatus(c *gin.Context) {
	id, ok := paramID(c, "repair")
	if !ok {
		return
	}

	var req request.PatchRepairStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	status, err := enum.ParseRepairStatus(strings.TrimSpace(req.Status))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !policy.CanSetRepairStatus(GetUserRoles(c), status, policy.RepairPathPatch) {
		response.Forbidden(c, "You may not set a repair to "+status.String())
		return
	}

	repair, err := h.repairService.PatchStatus(c.Request.Context(), id, status, req.Revision)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair status updated successfully", repair)
}

// Delete removes a ticket
func (h *RepairHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "repair")
	if !ok {
		return
	}

	if err := h.repairService.DeleteRepair(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListDeliverable lists completed tickets waiting at the delivery desk
func (h *RepairHandler) ListDeliverable(c *gin.Context) {
	repairs, err := h.repairService.ListDeliverable(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Deliverable repairs retrieved successfully", repairs)
}

// MarkDelivered hands a completed ticket over to its customer
func (h *RepairHandler) MarkDelivered(c *gin.Context) {
	id, ok := paramID(c, "repair")
	if !ok {
		return
	}

	if !policy.CanSetRepairStatus(GetUserRoles(c), enum.RepairStatusDelivered, policy.RepairPathDelivery) {
		response.Forbidden(c, "You may not deliver repairs")
		return
	}

	repair, err := h.repairService.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Repair delivered successfully", repair)
}
