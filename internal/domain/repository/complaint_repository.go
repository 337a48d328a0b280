package repository

import (
	"context"
	"time"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// ArchivedMode selects archived/non-archived complaints in listings.
type ArchivedMode int

const (
	ExcludeArchived ArchivedMode = iota
	IncludeArchived
	OnlyArchived
)

// ComplaintFilter narrows complaint listings. Zero values do not filter,
// except Archived which defaults to hiding archived complaints.
type ComplaintFilter struct {
	BranchIDs []uint
	Status    entity.ComplaintStatus
	Query     string // case-insensitive match on customer, phone, brand, model, color
	From      *time.Time
	To        *time.Time
	Archived  ArchivedMode
	Limit     int
}

// ComplaintRepository persistence port for Complaint.
type ComplaintRepository interface {
	Create(ctx context.Context, c *entity.Complaint) error
	GetByID(ctx context.Context, id uint) (*entity.Complaint, error)
	Update(ctx context.Context, c *entity.Complaint) error
	// List returns complaints by received date descending, then id descending.
	List(ctx context.Context, f ComplaintFilter) ([]*entity.Complaint, error)
}
