package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/application/service"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/domain/repository"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/response"
	"github.com/sangkips/repairshop-api/internal/presentation/http/middleware"
	"github.com/sangkips/repairshop-api/pkg/apperror"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUsername extracts the username from the Gin context
func GetUsername(c *gin.Context) string {
	username, _ := c.Get(middleware.ContextUsername)
	s, _ := username.(string)
	return s
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) enum.RoleSet {
	return middleware.UserRoles(c)
}

// paramID parses the :id route parameter, answering 400 when it is not a UUID
func paramID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(page, perPage int) *pagination.PaginationParams {
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

// dateFilter turns optional from/to query dates into a range; both are needed
func dateFilter(from, to string, loc *time.Location) (*repository.DateRange, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, nil
	}
	period, err := service.ResolvePeriod(service.ReportSelector{From: from, To: to}, loc, time.Now())
	if err != nil {
		return nil, err
	}
	return period.Range, nil
}

// parseDate reads a calendar date in loc
func parseDate(field, raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, apperror.NewFieldError(field, field+" must be a date like 2006-01-02")
	}
	return t, nil
}
