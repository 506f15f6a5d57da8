package request

// CreateExpenseRequest represents an expense creation request
type CreateExpenseRequest struct {
	Type        string  `json:"type" binding:"required,oneof=fixed variable"`
	Title       string  `json:"title" binding:"required,max=255"`
	Amount      float64 `json:"amount" binding:"min=0"`
	Date        string  `json:"date" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"omitempty,max=100"`
}

// ExpenseFilterRequest represents expense filter parameters
type ExpenseFilterRequest struct {
	Type    string `form:"type" binding:"omitempty,oneof=fixed variable"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
