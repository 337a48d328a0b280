package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner runs callbacks inside one database transaction.
type TxRunner struct {
	db *gorm.DB
}

// NewTxRunner builds the runner.
func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run begins a transaction, hands fn repositories bound to it, then commits or rolls back.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// NewRepos binds every repository to db (a plain handle or a transaction).
func NewRepos(db *gorm.DB) repository.Repos {
	return repository.Repos{
		Branches:   NewBranchRepository(db),
		Users:      NewUserRepository(db),
		Orders:     NewOrderRepository(db),
		Complaints: NewComplaintRepository(db),
		Audit:      NewAuditRepository(db),
	}
}
