package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComplaintRequest create and edit input. Dates are YYYY-MM-DD; phone is nine digits.
// Status defaults to pending on create; DiscountPercent is kept only for rejected.
type ComplaintRequest struct {
	Customer        string           `json:"customer"`
	Phone           string           `json:"phone"`
	Brand           string           `json:"brand"`
	Model           string           `json:"model"`
	Color           string           `json:"color"`
	ReceivedDate    string           `json:"received_date"`
	PurchaseDate    string           `json:"purchase_date"`
	Defect          string           `json:"defect"`
	Status          string           `json:"status"`
	DiscountPercent *float64         `json:"discount_percent"`
	Resolution      string           `json:"resolution"`
	Price           *decimal.Decimal `json:"price"`
	Notes           string           `json:"notes"`
	CustomerCalled  bool             `json:"customer_called"`
}

// ComplaintActionRequest quick status change: pending, exchanged, sentForRepair, rejected.
type ComplaintActionRequest struct {
	Action string `json:"action"`
}

// ComplaintQuery list filters as they arrive in the query string. On branch
// lists Archived adds archived complaints; in the admin browser it shows only them.
type ComplaintQuery struct {
	Status   string `query:"status"`
	Q        string `query:"q"`
	From     string `query:"from"`
	To       string `query:"to"`
	Archived bool   `query:"archived"`
	BranchID uint   `query:"branch"`
	Limit    int    `query:"limit"`
}

// ComplaintResponse output of a complaint.
type ComplaintResponse struct {
	ID              uint             `json:"id"`
	BranchID        uint             `json:"branch_id"`
	Customer        string           `json:"customer"`
	Phone           string           `json:"phone"`
	Brand           string           `json:"brand"`
	Model           string           `json:"model"`
	Color           string           `json:"color"`
	ReceivedDate    string           `json:"received_date"`
	PurchaseDate    string           `json:"purchase_date"`
	WarrantyEnd     string           `json:"warranty_end"`
	Defect          string           `json:"defect"`
	Status          string           `json:"status"`
	DiscountPercent *float64         `json:"discount_percent"`
	Resolution      string           `json:"resolution"`
	Price           *decimal.Decimal `json:"price"`
	Notes           string           `json:"notes"`
	CustomerCalled  bool             `json:"customer_called"`
	Receiver        string           `json:"receiver"`
	Archived        bool             `json:"archived"`
	ArchivedAt      *time.Time       `json:"archived_at"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ComplaintListResponse list of complaints.
type ComplaintListResponse struct {
	Items []ComplaintResponse `json:"items"`
}

// ArchiveResponse result of an archive request; Outcome is "archived" or "already_archived".
type ArchiveResponse struct {
	Outcome   string            `json:"outcome"`
	Message   string            `json:"message"`
	Complaint ComplaintResponse `json:"complaint"`
}
