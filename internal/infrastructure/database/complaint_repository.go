package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
)

var _ repository.ComplaintRepository = (*ComplaintRepo)(nil)

// ComplaintRepo gorm implementation of ComplaintRepository.
type ComplaintRepo struct {
	db *gorm.DB
}

// NewComplaintRepository builds the repository on a handle or transaction.
func NewComplaintRepository(db *gorm.DB) *ComplaintRepo {
	return &ComplaintRepo{db: db}
}

func (r *ComplaintRepo) Create(ctx context.Context, c *entity.Complaint) error {
	row := fromComplaint(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return writeErr("complaints.Create", err)
	}
	c.ID, c.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (r *ComplaintRepo) GetByID(ctx context.Context, id uint) (*entity.Complaint, error) {
	var row complaintRow
	err := r.db.WithContext(ctx).First(&row, id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("complaints.GetByID: %w", err)
	}
	return toComplaint(&row), nil
}

// Update writes every column; concurrent edits are last-write-wins.
func (r *ComplaintRepo) Update(ctx context.Context, c *entity.Complaint) error {
	if err := r.db.WithContext(ctx).Save(fromComplaint(c)).Error; err != nil {
		return writeErr("complaints.Update", err)
	}
	return nil
}

func (r *ComplaintRepo) List(ctx context.Context, f repository.ComplaintFilter) ([]*entity.Complaint, error) {
	q := r.db.WithContext(ctx).Model(&complaintRow{})
	if len(f.BranchIDs) > 0 {
		q = q.Where("branch_id IN ?", f.BranchIDs)
	}
	switch f.Archived {
	case repository.ExcludeArchived:
		q = q.Where("archived = ?", false)
	case repository.OnlyArchived:
		q = q.Where("archived = ?", true)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		clause, args := searchClause(r.db.Dialector.Name(), "%"+term+"%")
		q = q.Where(clause, args...)
	}
	if f.From != nil {
		q = q.Where("received_date >= ?", asDate(*f.From))
	}
	if f.To != nil {
		q = q.Where("received_date <= ?", asDate(*f.To))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []complaintRow
	if err := q.Order("received_date DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("complaints.List: %w", err)
	}
	out := make([]*entity.Complaint, 0, len(rows))
	for i := range rows {
		out = append(out, toComplaint(&rows[i]))
	}
	return out, nil
}

// searchClause ORs a case-insensitive match over the searchable columns.
func searchClause(dialect, pattern string) (string, []interface{}) {
	cols := []string{"customer", "phone", "brand", "model", "color"}
	parts := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, likeOp(dialect, c))
		args = append(args, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
