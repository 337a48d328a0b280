package database

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// Row types are the storage shape; repositories map them to domain entities
// so gorm tags never leak into the domain package.

type branchRow struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;uniqueIndex"`
	Address   string `gorm:"size:200"`
	Company   string `gorm:"size:200"`
	CreatedAt time.Time
}

func (branchRow) TableName() string { return "branches" }

type userRow struct {
	ID           uint    `gorm:"primaryKey"`
	Username     string  `gorm:"size:80;not null;uniqueIndex"`
	PasswordHash string  `gorm:"size:255;not null"`
	PIN          *string `gorm:"column:pin;size:10;uniqueIndex"`
	Role         string  `gorm:"size:20;not null"`
	Name         string  `gorm:"size:120"`
	// LegacyBranchID single-branch assignment of old rows; cleared on every write.
	LegacyBranchID *uint `gorm:"column:legacy_branch_id"`
	CreatedAt      time.Time
}

func (userRow) TableName() string { return "users" }

type userBranchRow struct {
	UserID   uint `gorm:"primaryKey;autoIncrement:false"`
	BranchID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (userBranchRow) TableName() string { return "user_branches" }

type orderRow struct {
	ID           uint                `gorm:"primaryKey"`
	BranchID     uint                `gorm:"not null;index"`
	CustomerName string              `gorm:"size:200;not null"`
	Submitter    string              `gorm:"size:120"`
	Phone        string              `gorm:"size:20;not null"`
	Prepaid      bool                `gorm:"not null"`
	OrderDate    time.Time           `gorm:"type:date;not null;index"`
	Amount       decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	Notes        string              `gorm:"type:text"`
	Status       string              `gorm:"size:20;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (orderRow) TableName() string { return "orders" }

type complaintRow struct {
	ID              uint                `gorm:"primaryKey"`
	BranchID        uint                `gorm:"not null;index"`
	Customer        string              `gorm:"size:200;not null"`
	Phone           string              `gorm:"size:20;not null"`
	Brand           string              `gorm:"size:100;not null"`
	Model           string              `gorm:"size:100;not null"`
	Color           string              `gorm:"size:50"`
	ReceivedDate    time.Time           `gorm:"type:date;not null;index"`
	PurchaseDate    time.Time           `gorm:"type:date;not null"`
	Defect          string              `gorm:"type:text;not null"`
	Status          string              `gorm:"size:20;not null;index"`
	DiscountPercent *float64
	Resolution      string              `gorm:"type:text"`
	Price           decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	Notes           string              `gorm:"type:text"`
	CustomerCalled  bool                `gorm:"not null"`
	Receiver        string              `gorm:"size:120"`
	Archived        bool                `gorm:"not null;index"`
	ArchivedAt      *time.Time
	CreatedAt       time.Time
}

func (complaintRow) TableName() string { return "complaints" }

// orderAuditRow order history plus branch-less admin actions (OrderID nil).
type orderAuditRow struct {
	ID        uint      `gorm:"primaryKey"`
	OrderID   *uint     `gorm:"index"`
	BranchID  uint      `gorm:"not null;index"`
	Actor     string    `gorm:"size:120;not null"`
	Action    string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (orderAuditRow) TableName() string { return "order_audit_entries" }

type complaintAuditRow struct {
	ID          uint      `gorm:"primaryKey"`
	ComplaintID uint      `gorm:"not null;index"`
	BranchID    uint      `gorm:"not null;index"`
	Actor       string    `gorm:"size:120;not null"`
	Action      string    `gorm:"size:255;not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (complaintAuditRow) TableName() string { return "complaint_audit_entries" }

// ── mappers ──────────────────────────────────────────────────────────────────

func toBranch(r *branchRow) *entity.Branch {
	return &entity.Branch{ID: r.ID, Name: r.Name, Address: r.Address, Company: r.Company, CreatedAt: r.CreatedAt}
}

func fromBranch(b *entity.Branch) *branchRow {
	return &branchRow{ID: b.ID, Name: b.Name, Address: b.Address, Company: b.Company, CreatedAt: b.CreatedAt}
}

func toUser(r *userRow, branchIDs []uint) *entity.User {
	u := &entity.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		Name:         r.Name,
		BranchIDs:    entity.UniqueIDs(branchIDs),
		CreatedAt:    r.CreatedAt,
	}
	if r.PIN != nil {
		u.PIN = *r.PIN
	}
	if r.LegacyBranchID != nil {
		u.AttachLegacyBranch(*r.LegacyBranchID)
	}
	return u
}

func fromUser(u *entity.User) *userRow {
	r := &userRow{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Name:         u.Name,
		CreatedAt:    u.CreatedAt,
	}
	if u.PIN != "" {
		pin := u.PIN
		r.PIN = &pin
	}
	return r
}

func toOrder(r *orderRow) *entity.Order {
	return &entity.Order{
		ID:           r.ID,
		BranchID:     r.BranchID,
		CustomerName: r.CustomerName,
		Submitter:    r.Submitter,
		Phone:        r.Phone,
		Prepaid:      r.Prepaid,
		OrderDate:    asDate(r.OrderDate),
		Amount:       r.Amount,
		Notes:        r.Notes,
		Status:       entity.OrderStatus(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func fromOrder(o *entity.Order) *orderRow {
	return &orderRow{
		ID:           o.ID,
		BranchID:     o.BranchID,
		CustomerName: o.CustomerName,
		Submitter:    o.Submitter,
		Phone:        o.Phone,
		Prepaid:      o.Prepaid,
		OrderDate:    asDate(o.OrderDate),
		Amount:       o.Amount,
		Notes:        o.Notes,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func toComplaint(r *complaintRow) *entity.Complaint {
	return &entity.Complaint{
		ID:              r.ID,
		BranchID:        r.BranchID,
		Customer:        r.Customer,
		Phone:           r.Phone,
		Brand:           r.Brand,
		Model:           r.Model,
		Color:           r.Color,
		ReceivedDate:    asDate(r.ReceivedDate),
		PurchaseDate:    asDate(r.PurchaseDate),
		Defect:          r.Defect,
		Status:          entity.ComplaintStatus(r.Status),
		DiscountPercent: r.DiscountPercent,
		Resolution:      r.Resolution,
		Price:           r.Price,
		Notes:           r.Notes,
		CustomerCalled:  r.CustomerCalled,
		Receiver:        r.Receiver,
		Archived:        r.Archived,
		ArchivedAt:      r.ArchivedAt,
		CreatedAt:       r.CreatedAt,
	}
}

func fromComplaint(c *entity.Complaint) *complaintRow {
	return &complaintRow{
		ID:              c.ID,
		BranchID:        c.BranchID,
		Customer:        c.Customer,
		Phone:           c.Phone,
		Brand:           c.Brand,
		Model:           c.Model,
		Color:           c.Color,
		ReceivedDate:    asDate(c.ReceivedDate),
		PurchaseDate:    asDate(c.PurchaseDate),
		Defect:          c.Defect,
		Status:          string(c.Status),
		DiscountPercent: c.DiscountPercent,
		Resolution:      c.Resolution,
		Price:           c.Price,
		Notes:           c.Notes,
		CustomerCalled:  c.CustomerCalled,
		Receiver:        c.Receiver,
		Archived:        c.Archived,
		ArchivedAt:      c.ArchivedAt,
		CreatedAt:       c.CreatedAt,
	}
}

// asDate keeps only the calendar date, as UTC midnight.
func asDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
