package repository

import (
	"context"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// BranchRepository persistence port for Branch.
// Getters return (nil, nil) when the row does not exist.
type BranchRepository interface {
	Create(ctx context.Context, b *entity.Branch) error
	GetByID(ctx context.Context, id uint) (*entity.Branch, error)
	GetByName(ctx context.Context, name string) (*entity.Branch, error)
	List(ctx context.Context) ([]*entity.Branch, error)
	Update(ctx context.Context, b *entity.Branch) error
	Delete(ctx context.Context, id uint) error
	// CountDependents counts the orders and complaints owned by the branch.
	CountDependents(ctx context.Context, id uint) (orders, complaints int64, err error)
}
