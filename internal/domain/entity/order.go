package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/branchdesk/branchdesk-api/pkg/clock"
)

// OrderStatus lifecycle of a pickup order. Orders are never physically removed.
type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderIssued    OrderStatus = "issued"
	OrderUnclaimed OrderStatus = "unclaimed"
	OrderDeleted   OrderStatus = "deleted"
)

// OrderStatuses in display order.
var OrderStatuses = []OrderStatus{OrderActive, OrderIssued, OrderUnclaimed, OrderDeleted}

// Field limits.
const (
	OrderCustomerMax = 200
	OrderNotesMax    = 5000
)

// FreshWindowDays active orders at most this old are highlighted as fresh.
const FreshWindowDays = 7

// Freshness derived highlight of active orders, never stored.
type Freshness string

const (
	Fresh Freshness = "fresh"
	Stale Freshness = "stale"
)

// Order a customer pickup request on a branch.
type Order struct {
	ID           uint
	BranchID     uint
	CustomerName string
	Submitter    string
	Phone        string // +420 and nine digits
	Prepaid      bool
	OrderDate    time.Time // calendar date, UTC midnight
	Amount       decimal.NullDecimal
	Notes        string
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Freshness returns fresh/stale for active orders and "" for the rest.
func (o *Order) Freshness(today time.Time) Freshness {
	if o.Status != OrderActive {
		return ""
	}
	return FreshnessOf(o.OrderDate, today)
}

// FreshnessOf classifies an order date against today.
func FreshnessOf(orderDate, today time.Time) Freshness {
	if clock.DaysBetween(orderDate, today) <= FreshWindowDays {
		return Fresh
	}
	return Stale
}

// FreshCutoff is the earliest order date still counted as fresh on the given day.
func FreshCutoff(today time.Time) time.Time {
	return clock.Date(today).AddDate(0, 0, -FreshWindowDays)
}
