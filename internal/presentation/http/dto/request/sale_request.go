package request

import (
	"github.com/google/uuid"
)

// ServiceInfoRequest carries the customer and device of a service line
type ServiceInfoRequest struct {
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Description    string `json:"description"`
	AccessPassword string `json:"access_password"`
}

// SaleItemRequest is one cart line; unit_price includes tax
type SaleItemRequest struct {
	ProductID   uuid.UUID           `json:"product_id" binding:"required"`
	Qty         int                 `json:"qty"`
	UnitPrice   float64             `json:"unit_price"`
	ServiceInfo *ServiceInfoRequest `json:"service_info"`
}

// CreateSaleRequest represents a checkout. A blank sale_code is generated.
type CreateSaleRequest struct {
	SaleCode string            `json:"sale_code" binding:"omitempty,max=100"`
	Items    []SaleItemRequest `json:"items"`
}

// UpdateSaleRequest replaces every line of an existing sale
type UpdateSaleRequest struct {
	Items []SaleItemRequest `json:"items"`
}

// SaleFilterRequest represents sale filter parameters
type SaleFilterRequest struct {
	Search  string `form:"q"`
	Status  string `form:"status" binding:"omitempty,oneof=pending completed"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
