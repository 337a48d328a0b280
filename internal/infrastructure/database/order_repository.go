package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo gorm implementation of OrderRepository.
type OrderRepo struct {
	db *gorm.DB
}

// NewOrderRepository builds the repository on a handle or transaction.
func NewOrderRepository(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	row := fromOrder(o)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return writeErr("orders.Create", err)
	}
	o.ID, o.CreatedAt, o.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id uint) (*entity.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).First(&row, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("orders.GetByID: %w", err)
	}
	return toOrder(&row), nil
}

// Update writes every column; concurrent edits are last-write-wins.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	row := fromOrder(o)
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return writeErr("orders.Update", err)
	}
	o.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	q := r.db.WithContext(ctx).Model(&orderRow{})
	if len(f.BranchIDs) > 0 {
		q = q.Where("branch_id IN ?", f.BranchIDs)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []orderRow
	if err := q.Order("order_date DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("orders.List: %w", err)
	}
	out := make([]*entity.Order, 0, len(rows))
	for i := range rows {
		out = append(out, toOrder(&rows[i]))
	}
	return out, nil
}
