package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo gorm implementation of BranchRepository.
type BranchRepo struct {
	db *gorm.DB
}

// NewBranchRepository builds the repository on a handle or transaction.
func NewBranchRepository(db *gorm.DB) *BranchRepo {
	return &BranchRepo{db: db}
}

func (r *BranchRepo) Create(ctx context.Context, b *entity.Branch) error {
	row := fromBranch(b)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return writeErr("branches.Create", err)
	}
	b.ID, b.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (r *BranchRepo) GetByID(ctx context.Context, id uint) (*entity.Branch, error) {
	var row branchRow
	err := r.db.WithContext(ctx).First(&row, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("branches.GetByID: %w", err)
	}
	return toBranch(&row), nil
}

func (r *BranchRepo) GetByName(ctx context.Context, name string) (*entity.Branch, error) {
	var row branchRow
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("branches.GetByName: %w", err)
	}
	return toBranch(&row), nil
}

func (r *BranchRepo) List(ctx context.Context) ([]*entity.Branch, error) {
	var rows []branchRow
	if err := r.db.WithContext(ctx).Order("name").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("branches.List: %w", err)
	}
	out := make([]*entity.Branch, 0, len(rows))
	for i := range rows {
		out = append(out, toBranch(&rows[i]))
	}
	return out, nil
}

func (r *BranchRepo) Update(ctx context.Context, b *entity.Branch) error {
	res := r.db.WithContext(ctx).Model(&branchRow{ID: b.ID}).Updates(map[string]interface{}{
		"name":    b.Name,
		"address": b.Address,
		"company": b.Company,
	})
	if res.Error != nil {
		return writeErr("branches.Update", res.Error)
	}
	return nil
}

func (r *BranchRepo) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("branch_id = ?", id).Delete(&userBranchRow{}).Error; err != nil {
		return fmt.Errorf("branches.Delete assignments: %w", err)
	}
	if err := db.Model(&userRow{}).Where("legacy_branch_id = ?", id).Update("legacy_branch_id", nil).Error; err != nil {
		return fmt.Errorf("branches.Delete legacy assignments: %w", err)
	}
	if err := db.Delete(&branchRow{}, id).Error; err != nil {
		return fmt.Errorf("branches.Delete: %w", err)
	}
	return nil
}

func (r *BranchRepo) CountDependents(ctx context.Context, id uint) (orders, complaints int64, err error) {
	db := r.db.WithContext(ctx)
	if err = db.Model(&orderRow{}).Where("branch_id = ?", id).Count(&orders).Error; err != nil {
		return 0, 0, fmt.Errorf("branches.CountDependents orders: %w", err)
	}
	if err = db.Model(&complaintRow{}).Where("branch_id = ?", id).Count(&complaints).Error; err != nil {
		return 0, 0, fmt.Errorf("branches.CountDependents complaints: %w", err)
	}
	return orders, complaints, nil
}
