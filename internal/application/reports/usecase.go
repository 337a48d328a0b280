package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
	"github.com/branchdesk/branchdesk-api/pkg/clock"
	"github.com/branchdesk/branchdesk-api/pkg/logger"
)

// Renderers groups the infrastructure renderers.
type Renderers struct {
	Receipt  ReceiptRenderer
	CSV      ComplaintTableRenderer
	Workbook WorkbookRenderer
}

// ReportUseCase builds downloadable documents. It never mutates data.
type ReportUseCase struct {
	complaints ComplaintSource
	repos      repository.Repos
	render     Renderers
	clock      clock.Clock
	log        *logger.Logger
}

// NewReportUseCase builds the use case.
func NewReportUseCase(complaints ComplaintSource, repos repository.Repos, render Renderers, clk clock.Clock, log *logger.Logger) *ReportUseCase {
	return &ReportUseCase{complaints: complaints, repos: repos, render: render, clock: clk, log: log.Component("reports")}
}

// ComplaintReceipt renders the receipt of one complaint.
func (uc *ReportUseCase) ComplaintReceipt(ctx context.Context, p entity.Principal, complaintID uint) (*Document, error) {
	c, b, err := uc.complaints.Receipt(ctx, p, complaintID)
	if err != nil {
		return nil, err
	}
	body, err := uc.render.Receipt.ComplaintReceipt(ctx, c, b, uc.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("reports: complaint receipt: %w", err)
	}
	return &Document{
		Filename:    fmt.Sprintf("complaint_%d.pdf", c.ID),
		ContentType: ContentTypePDF,
		Body:        body,
	}, nil
}

// ComplaintCSV exports every complaint of a branch, archived ones included.
func (uc *ReportUseCase) ComplaintCSV(ctx context.Context, p entity.Principal, branchID uint, enc Encoding) (*Document, error) {
	b, list, err := uc.complaints.Export(ctx, p, branchID)
	if err != nil {
		return nil, err
	}
	body, err := uc.render.CSV.ComplaintCSV(ctx, b, list, enc)
	if err != nil {
		return nil, fmt.Errorf("reports: complaint csv: %w", err)
	}
	return &Document{
		Filename:    fmt.Sprintf("complaints_%s_%s.csv", fileSafe(b.Name), uc.clock.Today().Format("20060102")),
		ContentType: ContentTypeCSV(enc),
		Body:        body,
	}, nil
}

// Workbook exports all orders and complaints of all branches. Admin only.
func (uc *ReportUseCase) Workbook(ctx context.Context, p entity.Principal) (*Document, error) {
	if !p.IsAdmin() {
		uc.log.Warn().Str("actor", p.Actor()).Msg("workbook export denied")
		return nil, domain.ErrForbidden
	}
	branches, err := uc.repos.Branches.List(ctx)
	if err != nil {
		return nil, domain.Persistence("reports.Workbook", err)
	}
	orders, err := uc.repos.Orders.List(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, domain.Persistence("reports.Workbook", err)
	}
	complaints, err := uc.repos.Complaints.List(ctx, repository.ComplaintFilter{Archived: repository.IncludeArchived})
	if err != nil {
		return nil, domain.Persistence("reports.Workbook", err)
	}
	snap := Snapshot{
		BranchNames: make(map[uint]string, len(branches)),
		Orders:      orders,
		Complaints:  complaints,
		GeneratedAt: uc.clock.Now(),
	}
	for _, b := range branches {
		snap.BranchNames[b.ID] = b.Name
	}
	body, err := uc.render.Workbook.Workbook(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("reports: workbook: %w", err)
	}
	uc.log.Info().Str("actor", p.Actor()).Int("orders", len(orders)).Int("complaints", len(complaints)).Msg("workbook exported")
	return &Document{
		Filename:    fmt.Sprintf("export_all_%s.xlsx", uc.clock.Today().Format("20060102")),
		ContentType: ContentTypeXLSX,
		Body:        body,
	}, nil
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', '"', ':':
			return '_'
		}
		return r
	}, name)
}
