package repository

import (
	"context"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// OrderFilter narrows order listings. Zero values do not filter.
type OrderFilter struct {
	BranchIDs []uint
	Statuses  []entity.OrderStatus
	Limit     int
}

// OrderRepository persistence port for Order. There is no delete: removal is a status.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id uint) (*entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error
	// List returns orders newest first (order date, then id).
	List(ctx context.Context, f OrderFilter) ([]*entity.Order, error)
}
