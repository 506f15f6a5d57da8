package request

// ReportRequest selects the report period: from/to dates, or year with an optional month
type ReportRequest struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Year  string `form:"year"`
	Month string `form:"month"`
}
