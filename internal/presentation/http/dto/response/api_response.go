package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/pkg/apperror"
	"github.com/sangkips/repairshop-api/pkg/pagination"
)

// APIResponse is the envelope of every JSON body the API writes
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta ties a response to its request
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

func newMeta(c *gin.Context) *Meta {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}
}

func write(c *gin.Context, statusCode int, body APIResponse) {
	body.Meta = newMeta(c)
	c.JSON(statusCode, body)
}

// OK sends a 200 with data
func OK(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// Created sends a 201 with the created resource
func Created(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusCreated, APIResponse{Success: true, Message: message, Data: data})
}

// Paginated sends a 200 with one page of results and its pagination block
func Paginated[T any](c *gin.Context, message string, result *pagination.PaginatedResult[T]) {
	write(c, http.StatusOK, APIResponse{Success: true, Message: message, Data: result})
}

// NoContent sends a 204 without a body
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error maps err to its status code; anything that is not an AppError is a 500
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	write(c, appErr.Code, APIResponse{Message: appErr.Message, Errors: appErr.Errors})
}

// Fail sends an error envelope with the given status and no field errors
func Fail(c *gin.Context, statusCode int, message string) {
	write(c, statusCode, APIResponse{Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, message)
}

func InternalServerError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}
