package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo gorm implementation of UserRepository. Branch assignments live in
// user_branches; the legacy_branch_id column is only read, and cleared on write.
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepository builds the repository on a handle or transaction.
func NewUserRepository(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	row := fromUser(u)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return replaceAssignments(tx, row.ID, u.BranchIDs)
	})
	if err != nil {
		return writeErr("users.Create", err)
	}
	u.ID, u.CreatedAt = row.ID, row.CreatedAt
	u.SetBranches(u.BranchIDs)
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "users.GetByID", r.db.Where("id = ?", id))
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.first(ctx, "users.GetByUsername", r.db.Where("username = ?", username))
}

func (r *UserRepo) GetByPIN(ctx context.Context, pin string) (*entity.User, error) {
	return r.first(ctx, "users.GetByPIN", r.db.Where("pin = ?", pin))
}

func (r *UserRepo) first(ctx context.Context, op string, q *gorm.DB) (*entity.User, error) {
	var row userRow
	err := q.WithContext(ctx).First(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	assigned, err := r.assignments(ctx, []uint{row.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toUser(&row, assigned[row.ID]), nil
}

func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	var rows []userRow
	if err := r.db.WithContext(ctx).Order("username").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("users.List: %w", err)
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assigned, err := r.assignments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("users.List: %w", err)
	}
	out := make([]*entity.User, 0, len(rows))
	for i := range rows {
		out = append(out, toUser(&rows[i], assigned[rows[i].ID]))
	}
	return out, nil
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	row := fromUser(u)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userRow{ID: u.ID}).Updates(map[string]interface{}{
			"username":         row.Username,
			"password_hash":    row.PasswordHash,
			"pin":              row.PIN,
			"role":             row.Role,
			"name":             row.Name,
			"legacy_branch_id": nil,
		})
		if res.Error != nil {
			return res.Error
		}
		return replaceAssignments(tx, u.ID, u.BranchIDs)
	})
	if err != nil {
		return writeErr("users.Update", err)
	}
	u.SetBranches(u.BranchIDs)
	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	err := r.db.WithContext(ctx).Model(&userRow{ID: id}).Update("password_hash", hash).Error
	if err != nil {
		return fmt.Errorf("users.UpdatePasswordHash: %w", err)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userBranchRow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&userRow{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("users.Delete: %w", err)
	}
	return nil
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&userRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("users.Count: %w", err)
	}
	return n, nil
}

func (r *UserRepo) assignments(ctx context.Context, userIDs []uint) (map[uint][]uint, error) {
	out := make(map[uint][]uint, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var links []userBranchRow
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load branch assignments: %w", err)
	}
	for _, l := range links {
		out[l.UserID] = append(out[l.UserID], l.BranchID)
	}
	return out, nil
}

func replaceAssignments(tx *gorm.DB, userID uint, branchIDs []uint) error {
	if err := tx.Where("user_id = ?", userID).Delete(&userBranchRow{}).Error; err != nil {
		return err
	}
	ids := entity.UniqueIDs(branchIDs)
	if len(ids) == 0 {
		return nil
	}
	links := make([]userBranchRow, 0, len(ids))
	for _, id := range ids {
		links = append(links, userBranchRow{UserID: userID, BranchID: id})
	}
	return tx.Create(&links).Error
}
