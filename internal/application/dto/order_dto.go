package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest input for a new pickup order. Phone is the nine local digits.
type CreateOrderRequest struct {
	CustomerName string           `json:"customer_name"`
	Phone        string           `json:"phone"`
	OrderDate    string           `json:"order_date"`
	Prepaid      bool             `json:"prepaid"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Notes        string           `json:"notes"`
	Submitter    string           `json:"submitter"`
}

// OrderActionRequest status transition: issue, markUnclaimed or softDelete.
type OrderActionRequest struct {
	Action string `json:"action"`
}

// UpdateNotesRequest new notes text; empty clears them.
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// OrderResponse output of an order. Freshness is only set for active orders.
type OrderResponse struct {
	ID           uint             `json:"id"`
	BranchID     uint             `json:"branch_id"`
	CustomerName string           `json:"customer_name"`
	Submitter    string           `json:"submitter"`
	Phone        string           `json:"phone"`
	Prepaid      bool             `json:"prepaid"`
	OrderDate    string           `json:"order_date"`
	Amount       *decimal.Decimal `json:"amount"`
	Notes        string           `json:"notes"`
	Status       string           `json:"status"`
	Freshness    string           `json:"freshness,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// OrderListResponse active orders of a branch with the fresh/stale split.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Fresh int             `json:"fresh"`
	Stale int             `json:"stale"`
}
