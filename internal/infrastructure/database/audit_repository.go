package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo writes the two history tables. Only inserts and reads exist here.
type AuditRepo struct {
	db *gorm.DB
}

// NewAuditRepository builds the repository; inside TxRunner it shares the mutation's transaction.
func NewAuditRepository(db *gorm.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	db := r.db.WithContext(ctx)
	switch e.Stream {
	case entity.StreamComplaint:
		row := &complaintAuditRow{ComplaintID: e.SubjectID, BranchID: e.BranchID, Actor: e.Actor, Action: e.Action, CreatedAt: e.At}
		if err := db.Create(row).Error; err != nil {
			return fmt.Errorf("audit.Append complaint: %w", err)
		}
		e.ID = row.ID
	default:
		row := &orderAuditRow{BranchID: e.BranchID, Actor: e.Actor, Action: e.Action, CreatedAt: e.At}
		if e.SubjectID != 0 {
			id := e.SubjectID
			row.OrderID = &id
		}
		if err := db.Create(row).Error; err != nil {
			return fmt.Errorf("audit.Append order: %w", err)
		}
		e.ID = row.ID
		e.Stream = entity.StreamOrder
	}
	return nil
}

func (r *AuditRepo) Recent(ctx context.Context, q repository.AuditQuery) ([]*entity.AuditEntry, error) {
	if q.Scope.Empty() {
		return []*entity.AuditEntry{}, nil
	}
	db := r.db.WithContext(ctx)
	if !q.Scope.All {
		db = db.Where("branch_id IN ?", q.Scope.IDs)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	db = db.Order("created_at DESC").Order("id DESC")

	if q.Stream == entity.StreamComplaint {
		var rows []complaintAuditRow
		if err := db.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("audit.Recent complaint: %w", err)
		}
		out := make([]*entity.AuditEntry, 0, len(rows))
		for _, row := range rows {
			out = append(out, &entity.AuditEntry{
				ID: row.ID, Stream: entity.StreamComplaint, SubjectID: row.ComplaintID,
				Actor: row.Actor, Action: row.Action, At: row.CreatedAt, BranchID: row.BranchID,
			})
		}
		return out, nil
	}

	var rows []orderAuditRow
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("audit.Recent order: %w", err)
	}
	out := make([]*entity.AuditEntry, 0, len(rows))
	for _, row := range rows {
		e := &entity.AuditEntry{
			ID: row.ID, Stream: entity.StreamOrder,
			Actor: row.Actor, Action: row.Action, At: row.CreatedAt, BranchID: row.BranchID,
		}
		if row.OrderID != nil {
			e.SubjectID = *row.OrderID
		}
		out = append(out, e)
	}
	return out, nil
}
