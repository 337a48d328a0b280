package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComplaintStatus outcome of a complaint.
type ComplaintStatus string

const (
	ComplaintPending       ComplaintStatus = "pending"
	ComplaintExchanged     ComplaintStatus = "exchanged"
	ComplaintSentForRepair ComplaintStatus = "sent_for_repair"
	ComplaintRejected      ComplaintStatus = "rejected"
)

// ComplaintStatuses in display order.
var ComplaintStatuses = []ComplaintStatus{ComplaintPending, ComplaintExchanged, ComplaintSentForRepair, ComplaintRejected}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	for _, v := range ComplaintStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Archivable reports whether a complaint in this status may be archived.
func (s ComplaintStatus) Archivable() bool {
	return s == ComplaintExchanged || s == ComplaintRejected
}

// Field limits.
const (
	ComplaintCustomerMax   = 200
	ComplaintBrandMax      = 100
	ComplaintModelMax      = 100
	ComplaintColorMax      = 50
	ComplaintDefectMax     = 2000
	ComplaintResolutionMax = 2000
	ComplaintNotesMax      = 5000
)

// Complaint a product return case.
type Complaint struct {
	ID              uint
	BranchID        uint
	Customer        string
	Phone           string
	Brand           string
	Model           string
	Color           string
	ReceivedDate    time.Time
	PurchaseDate    time.Time
	Defect          string
	Status          ComplaintStatus
	DiscountPercent *float64 // set only while Status is rejected
	Resolution      string
	Price           decimal.NullDecimal
	Notes           string
	CustomerCalled  bool
	Receiver        string
	Archived        bool
	ArchivedAt      *time.Time
	CreatedAt       time.Time
}

// SetStatus changes the status and drops the discount unless the complaint is rejected.
func (c *Complaint) SetStatus(s ComplaintStatus) {
	c.Status = s
	if s != ComplaintRejected {
		c.DiscountPercent = nil
	}
}

// Discounted reports a rejected complaint settled with a discount.
func (c *Complaint) Discounted() bool {
	return c.Status == ComplaintRejected && c.DiscountPercent != nil
}
