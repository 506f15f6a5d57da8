package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/repairshop-api/internal/application/service"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/request"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/response"
)

// ReportHandler handles financial report requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Get returns the report of the selected period
// @Summary Financial report
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "Start date (2006-01-02)"
// @Param to query string false "End date (2006-01-02)"
// @Param year query string false "Calendar year, or year-month"
// @Param month query string false "1-12 or all"
// @Success 200 {object} response.APIResponse
// @Router /reports [get]
func (h *ReportHandler) Get(c *gin.Context) {
	var req request.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), service.ReportSelector{
		From:  req.From,
		To:    req.To,
		Year:  req.Year,
		Month: req.Month,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Report generated successfully", report)
}
