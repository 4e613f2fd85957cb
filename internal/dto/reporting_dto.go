package dto

// DashboardParams selects the day the dashboard is computed for. Defaults to today.
type DashboardParams struct {
	Date string `form:"date" binding:"omitempty,datekey"`
}

// InvoiceStatsParams selects the year of the invoice statistics. Defaults to the current year.
type InvoiceStatsParams struct {
	Year int `form:"year" binding:"omitempty,min=2000,max=2100"`
}

// NextNumberParams selects the year of the number preview.
type NextNumberParams struct {
	Year int `form:"year" binding:"omitempty,min=2000,max=2100"`
}
