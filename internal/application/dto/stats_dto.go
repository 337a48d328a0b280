package dto

import "github.com/shopspring/decimal"

// OrderBranchStats order rollup of one branch for a year.
type OrderBranchStats struct {
	BranchID     uint            `json:"branch_id"`
	BranchName   string          `json:"branch_name"`
	Active       int64           `json:"active"`
	Issued       int64           `json:"issued"`
	Unclaimed    int64           `json:"unclaimed"`
	Deleted      int64           `json:"deleted"`
	Total        int64           `json:"total"`
	IssuedAmount decimal.Decimal `json:"issued_amount"`
	Fresh        int64           `json:"fresh"`
	Stale        int64           `json:"stale"`
}

// OrderStatsResponse per-branch order rollups. Degraded marks the per-branch fallback path.
type OrderStatsResponse struct {
	Year     int                `json:"year"`
	Branches []OrderBranchStats `json:"branches"`
	Degraded bool               `json:"degraded"`
}

// ComplaintBranchStats complaint rollup of one branch, archived excluded.
type ComplaintBranchStats struct {
	BranchID      uint   `json:"branch_id"`
	BranchName    string `json:"branch_name"`
	Total         int64  `json:"total"`
	Pending       int64  `json:"pending"`
	Exchanged     int64  `json:"exchanged"`
	SentForRepair int64  `json:"sent_for_repair"`
	Rejected      int64  `json:"rejected"`
	Discounted    int64  `json:"discounted"`
	Resolved      int64  `json:"resolved"`
}

// ComplaintStatsResponse per-branch complaint rollups; a nil Year covers all years.
type ComplaintStatsResponse struct {
	Year     *int                   `json:"year"`
	Branches []ComplaintBranchStats `json:"branches"`
	Degraded bool                   `json:"degraded"`
}

// MonthCountDTO rows in one month.
type MonthCountDTO struct {
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// NamedCountDTO label with a count (top customers, top brands).
type NamedCountDTO struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// OverviewResponse admin statistics page.
type OverviewResponse struct {
	Year               int                  `json:"year"`
	Month              *int                 `json:"month,omitempty"`
	BranchID           *uint                `json:"branch_id,omitempty"`
	Orders             OrderBranchStats     `json:"orders"`
	Complaints         ComplaintBranchStats `json:"complaints"`
	OrdersPerMonth     []MonthCountDTO      `json:"orders_per_month"`
	ComplaintsPerMonth []MonthCountDTO      `json:"complaints_per_month"`
	TopCustomers       []NamedCountDTO      `json:"top_customers"`
	TopBrands          []NamedCountDTO      `json:"top_brands"`
}
