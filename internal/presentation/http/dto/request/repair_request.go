package request

// PatchRepairStatusRequest writes a ticket status directly
type PatchRepairStatusRequest struct {
	Status   string  `json:"status" binding:"required"`
	Revision *string `json:"revision"`
}

// UpdateRepairRequest edits the descriptive fields of a ticket; absent fields are kept
type UpdateRepairRequest struct {
	CustomerName   *string `json:"customer_name"`
	CustomerPhone  *string `json:"customer_phone"`
	Brand          *string `json:"brand"`
	Model          *string `json:"model"`
	Description    *string `json:"description"`
	AccessPassword *string `json:"access_password"`
	Revision       *string `json:"revision"`
}

// RepairHistoryRequest represents repair history filter parameters
type RepairHistoryRequest struct {
	Search  string `form:"q"`
	Status  string `form:"status"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
