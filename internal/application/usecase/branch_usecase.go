package usecase

import (
	"context"
	"fmt"
	"regexp"

	"github.com/branchdesk/branchdesk-api/internal/application/audit"
	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/access"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
	"github.com/branchdesk/branchdesk-api/pkg/textnorm"
)

// Branch field limits.
const (
	BranchNameMin    = 2
	BranchNameMax    = 100
	BranchAddressMax = 200
	BranchCompanyMax = 200
)

var branchNamePattern = regexp.MustCompile(`^[\p{L}\p{N} .\-]+$`)

// BranchUseCase branch listing and admin CRUD.
type BranchUseCase struct {
	repos repository.Repos
	tx    repository.TxRunner
	clock clock.Clock
	log   *logger.Logger
}

// NewBranchUseCase builds the use case.
func NewBranchUseCase(repos repository.Repos, tx repository.TxRunner, clk clock.Clock, log *logger.Logger) *BranchUseCase {
	return &BranchUseCase{repos: repos, tx: tx, clock: clk, log: log.Component("branches")}
}

// List returns the branches p may open, by name.
func (uc *BranchUseCase) List(ctx context.Context, p entity.Principal) (*dto.BranchListResponse, error) {
	all, err := uc.repos.Branches.List(ctx)
	if err != nil {
		return nil, domain.Persistence("branches.List", err)
	}
	visible := access.Visible(p).Filter(all)
	items := make([]dto.BranchResponse, 0, len(visible))
	for _, b := range visible {
		items = append(items, *toBranchResponse(b))
	}
	return &dto.BranchListResponse{Items: items}, nil
}

// Create adds a branch. Names are unique ignoring case.
func (uc *BranchUseCase) Create(ctx context.Context, p entity.Principal, in dto.BranchRequest) (*dto.BranchResponse, error) {
	if err := requireAdmin(uc.log, p, "create branch"); err != nil {
		return nil, err
	}
	b := &entity.Branch{}
	if err := applyBranch(b, in); err != nil {
		return nil, err
	}
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		if err := uniqueBranchName(ctx, repos, b); err != nil {
			return err
		}
		if err := repos.Branches.Create(ctx, b); err != nil {
			return domain.Persistence("branches.Create", err)
		}
		return adminAudit(ctx, repos, uc.clock, p, "branch created: "+b.Name)
	})
	if err != nil {
		return nil, err
	}
	return toBranchResponse(b), nil
}

// Update renames or re-addresses a branch.
func (uc *BranchUseCase) Update(ctx context.Context, p entity.Principal, id uint, in dto.BranchRequest) (*dto.BranchResponse, error) {
	if err := requireAdmin(uc.log, p, "update branch"); err != nil {
		return nil, err
	}
	var updated *entity.Branch
	err := uc.tx.Run(ctx, func(repos repository.Repos) error {
		b, err := repos.Branches.GetByID(ctx, id)
		if err != nil {
			return domain.Persistence("branches.Update", err)
		}
		if b == nil {
			return domain.ErrNotFound
		}
		oldName := b.Name
		if err := applyBranch(b, in); err != nil {
			return err
		}
		if err := uniqueBranchName(ctx, repos, b); err != nil {
			return err
		}
		if err := repos.Branches.Update(ctx, b); err != nil {
			return domain.Persistence("branches.Update", err)
		}
		updated = b
		return adminAudit(ctx, repos, uc.clock, p, fmt.Sprintf("branch updated: %s -> %s", oldName, b.Name))
	})
	if err != nil {
		return nil, err
	}
	return toBranchResponse(updated), nil
}

// Delete removes a branch that owns no orders and no complaints.
func (uc *BranchUseCase) Delete(ctx context.Context, p entity.Principal, id uint) error {
	if err := requireAdmin(uc.log, p, "delete branch"); err != nil {
		return err
	}
	return uc.tx.Run(ctx, func(repos repository.Repos) error {
		b, err := repos.Branches.GetByID(ctx, id)
		if err != nil {
			return domain.Persistence("branches.Delete", err)
		}
		if b == nil {
			return domain.ErrNotFound
		}
		orders, complaints, err := repos.Branches.CountDependents(ctx, id)
		if err != nil {
			return domain.Persistence("branches.Delete", err)
		}
		if orders > 0 || complaints > 0 {
			return fmt.Errorf("branch has %d orders and %d complaints: %w", orders, complaints, domain.ErrConflict)
		}
		if err := repos.Branches.Delete(ctx, id); err != nil {
			return domain.Persistence("branches.Delete", err)
		}
		return adminAudit(ctx, repos, uc.clock, p, "branch deleted: "+b.Name)
	})
}

func applyBranch(b *entity.Branch, in dto.BranchRequest) error {
	name, err := domain.RequiredText("name", in.Name, BranchNameMax)
	if err != nil {
		return err
	}
	if textnorm.Len(name) < BranchNameMin {
		return domain.Invalid("name", fmt.Sprintf("must be at least %d characters", BranchNameMin))
	}
	if !branchNamePattern.MatchString(name) {
		return domain.Invalid("name", "may contain only letters, digits, spaces, '-' and '.'")
	}
	address, err := domain.OptionalText("address", in.Address, BranchAddressMax)
	if err != nil {
		return err
	}
	company, err := domain.OptionalText("company", in.Company, BranchCompanyMax)
	if err != nil {
		return err
	}
	b.Name, b.Address, b.Company = name, address, company
	return nil
}

func uniqueBranchName(ctx context.Context, repos repository.Repos, b *entity.Branch) error {
	all, err := repos.Branches.List(ctx)
	if err != nil {
		return domain.Persistence("branches.unique", err)
	}
	for _, other := range all {
		if other.ID != b.ID && textnorm.EqualFold(other.Name, b.Name) {
			return fmt.Errorf("branch %q already exists: %w", other.Name, domain.ErrConflict)
		}
	}
	return nil
}

// requireAdmin rejects non-admin callers of the administration use cases.
func requireAdmin(log *logger.Logger, p entity.Principal, what string) error {
	if p.IsAdmin() {
		return nil
	}
	log.Warn().Str("actor", p.Actor()).Str("op", what).Msg("admin action denied")
	return domain.ErrForbidden
}

// adminAudit records user and branch administration, which belongs to no branch.
func adminAudit(ctx context.Context, repos repository.Repos, clk clock.Clock, p entity.Principal, action string) error {
	return audit.Append(ctx, repos.Audit, clk, entity.AuditEntry{
		Stream:   entity.StreamOrder,
		BranchID: entity.NoBranch,
		Actor:    p.Actor(),
		Action:   action,
	})
}

func toBranchResponse(b *entity.Branch) *dto.BranchResponse {
	return &dto.BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		Company:   b.Company,
		CreatedAt: b.CreatedAt,
	}
}
