package request

import "github.com/sangkips/repairshop-api/internal/domain/enum"

// CreateUserRequest represents a staff account creation request.
// roles accepts a single role name or an array.
type CreateUserRequest struct {
	Username string       `json:"username" binding:"required,max=255"`
	Name     string       `json:"name" binding:"omitempty,max=255"`
	Password string       `json:"password" binding:"required,min=6"`
	Roles    enum.RoleSet `json:"roles" binding:"required"`
}

// UpdateUserRolesRequest replaces the roles of a user
type UpdateUserRolesRequest struct {
	Roles enum.RoleSet `json:"roles" binding:"required"`
}

// UserFilterRequest represents user filter parameters
type UserFilterRequest struct {
	Search  string `form:"q"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
