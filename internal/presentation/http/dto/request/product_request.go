package request

// ProductRequest is the body of product create and update requests.
// Update replaces every field.
type ProductRequest struct {
	Title         string  `json:"title" binding:"required,max=255"`
	Code          string  `json:"code" binding:"omitempty,max=100"`
	Type          string  `json:"type" binding:"omitempty,oneof=product service"`
	PurchasePrice float64 `json:"purchase_price" binding:"min=0"`
	SalePrice     float64 `json:"sale_price" binding:"min=0"`
	Stock         int     `json:"stock" binding:"min=0"`
	PurchaseDate  string  `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search  string `form:"q"`
	Type    string `form:"type" binding:"omitempty,oneof=product service"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
