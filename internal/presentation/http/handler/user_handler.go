package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/repairshop-api/internal/application/service"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/request"
	"github.com/sangkips/repairshop-api/internal/presentation/http/dto/response"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles listing users with pagination
// @Summary List Users
// @Description Get a paginated list of staff accounts with their roles
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(15)
// @Param q query string false "Search by username or name"
// @Success 200 {object} response.APIResponse
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter request.UserFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), pageParams(filter.Page, filter.PerPage), filter.Search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, "Users retrieved successfully", result)
}

// Create handles creating a staff account
// @Summary Create User
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateUserRequest true "Account data"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req request.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &service.CreateUserInput{
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "User created successfully", user)
}

// Get handles getting a single user by ID
// @Summary Get User
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := paramID(c, "user")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User retrieved successfully", user)
}

// UpdateRoles handles replacing user roles
// @Summary Update User Roles
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body request.UpdateUserRolesRequest true "Roles"
// @Success 200 {object} response.APIResponse
// @Router /users/{id}/roles [put]
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	userID, ok := paramID(c, "user")
	if !ok {
		return
	}

	var req request.UpdateUserRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.userService.UpdateUserRoles(c.Request.Context(), userID, req.Roles)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User roles updated successfully", user)
}

// Delete handles deleting a user
// @Summary Delete User
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	actorID := GetUserID(c)
	if actorID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	userID, ok := paramID(c, "user")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), *actorID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListRoles returns the assignable roles
func (h *UserHandler) ListRoles(c *gin.Context) {
	response.OK(c, "Roles retrieved successfully", enum.Roles)
}
