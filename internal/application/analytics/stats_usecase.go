// Package analytics contains the read-only statistics: per-branch order and
// complaint rollups and the admin overview.
package analytics

import (
	"context"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/access"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// StatsUseCase aggregates orders and complaints per visible branch.
//
// Each summary first runs one grouped query for all branches. If that fails
// the failure is logged and the counts are collected branch by branch; the
// response is then marked Degraded.
type StatsUseCase struct {
	branches repository.BranchRepository
	stats    repository.StatsRepository
	clock    clock.Clock
	log      *logger.Logger
}

// NewStatsUseCase builds the use case.
func NewStatsUseCase(branches repository.BranchRepository, stats repository.StatsRepository, clk clock.Clock, log *logger.Logger) *StatsUseCase {
	return &StatsUseCase{branches: branches, stats: stats, clock: clk, log: log.Component("stats")}
}

// OrderSummary per-branch order counts for year (0 means the current year).
// Status counts are limited to the year; fresh/stale cover every active order.
func (uc *StatsUseCase) OrderSummary(ctx context.Context, p entity.Principal, year int) (*dto.OrderStatsResponse, error) {
	if year == 0 {
		year = uc.clock.Today().Year()
	}
	branches, err := uc.visible(ctx, p)
	if err != nil {
		return nil, err
	}
	cutoff := entity.FreshCutoff(uc.clock.Today())
	out := &dto.OrderStatsResponse{Year: year, Branches: make([]dto.OrderBranchStats, 0, len(branches))}
	if len(branches) == 0 {
		return out, nil
	}

	byBranch := make(map[uint]repository.OrderCounts, len(branches))
	bulk, err := uc.stats.OrderCountsByBranch(ctx, branchIDs(branches), year, cutoff)
	if err == nil {
		for _, c := range bulk {
			byBranch[c.BranchID] = c
		}
	} else {
		uc.log.Warn().Err(err).Int("branches", len(branches)).Msg("bulk order stats failed, counting per branch")
		out.Degraded = true
		for _, b := range branches {
			c, err := uc.stats.OrderCountsForBranch(ctx, b.ID, year, cutoff)
			if err != nil {
				return nil, domain.Persistence("stats.OrderSummary", err)
			}
			byBranch[b.ID] = c
		}
	}

	for _, b := range branches {
		row := toOrderStats(byBranch[b.ID])
		row.BranchID, row.BranchName = b.ID, b.Name
		out.Branches = append(out.Branches, row)
	}
	return out, nil
}

// ComplaintSummary per-branch complaint counts, archived excluded. A nil year covers all years.
func (uc *StatsUseCase) ComplaintSummary(ctx context.Context, p entity.Principal, year *int) (*dto.ComplaintStatsResponse, error) {
	branches, err := uc.visible(ctx, p)
	if err != nil {
		return nil, err
	}
	out := &dto.ComplaintStatsResponse{Year: year, Branches: make([]dto.ComplaintBranchStats, 0, len(branches))}
	if len(branches) == 0 {
		return out, nil
	}

	byBranch := make(map[uint]repository.ComplaintCounts, len(branches))
	bulk, err := uc.stats.ComplaintCountsByBranch(ctx, branchIDs(branches), year)
	if err == nil {
		for _, c := range bulk {
			byBranch[c.BranchID] = c
		}
	} else {
		uc.log.Warn().Err(err).Int("branches", len(branches)).Msg("bulk complaint stats failed, counting per branch")
		out.Degraded = true
		for _, b := range branches {
			c, err := uc.stats.ComplaintCountsForBranch(ctx, b.ID, year)
			if err != nil {
				return nil, domain.Persistence("stats.ComplaintSummary", err)
			}
			byBranch[b.ID] = c
		}
	}

	for _, b := range branches {
		row := toComplaintStats(byBranch[b.ID])
		row.BranchID, row.BranchName = b.ID, b.Name
		out.Branches = append(out.Branches, row)
	}
	return out, nil
}

func (uc *StatsUseCase) visible(ctx context.Context, p entity.Principal) ([]*entity.Branch, error) {
	scope := access.Visible(p)
	if scope.Empty() {
		return nil, nil
	}
	all, err := uc.branches.List(ctx)
	if err != nil {
		return nil, domain.Persistence("stats.branches", err)
	}
	return scope.Filter(all), nil
}

func branchIDs(branches []*entity.Branch) []uint {
	ids := make([]uint, 0, len(branches))
	for _, b := range branches {
		ids = append(ids, b.ID)
	}
	return ids
}

func toOrderStats(c repository.OrderCounts) dto.OrderBranchStats {
	return dto.OrderBranchStats{
		BranchID:     c.BranchID,
		Active:       c.Active,
		Issued:       c.Issued,
		Unclaimed:    c.Unclaimed,
		Deleted:      c.Deleted,
		Total:        c.Active + c.Issued + c.Unclaimed + c.Deleted,
		IssuedAmount: c.IssuedAmount.Round(2),
		Fresh:        c.Fresh,
		Stale:        c.Stale,
	}
}

func toComplaintStats(c repository.ComplaintCounts) dto.ComplaintBranchStats {
	return dto.ComplaintBranchStats{
		BranchID:      c.BranchID,
		Total:         c.Pending + c.Exchanged + c.SentForRepair + c.Rejected,
		Pending:       c.Pending,
		Exchanged:     c.Exchanged,
		SentForRepair: c.SentForRepair,
		Rejected:      c.Rejected,
		Discounted:    c.Discounted,
		Resolved:      c.Exchanged + c.SentForRepair,
	}
}
