package repository

import (
	"context"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// UserRepository persistence port for User.
// Loaded users carry the union of their many-to-many and legacy assignments in
// BranchIDs; Create and Update write BranchIDs to the many-to-many relation
// and clear the legacy column.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByPIN(ctx context.Context, pin string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// UpdatePasswordHash rewrites only the credential (legacy plaintext upgrade).
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}
