package repository

import (
	"context"

	"github.com/branchdesk/branchdesk-api/internal/domain/access"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
)

// AuditQuery reads one audit stream, newest first.
type AuditQuery struct {
	Stream entity.AuditStream
	Scope  access.Scope
	Limit  int
}

// AuditRepository append-only history. It deliberately has no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, e *entity.AuditEntry) error
	Recent(ctx context.Context, q AuditQuery) ([]*entity.AuditEntry, error)
}
