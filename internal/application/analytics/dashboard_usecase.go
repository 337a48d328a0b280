package analytics

import (
	"context"
	"fmt"

	"github.com/branchdesk/branchdesk-api/internal/application/dto"
	"github.com/branchdesk/branchdesk-api/internal/domain"
	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
)

const overviewTop = 10 // rows in the top customers / top brands widgets

// OverviewFilter admin statistics selection. Year 0 means the current year;
// nil Month the whole year; nil BranchID every branch.
type OverviewFilter struct {
	Year     int
	Month    *int
	BranchID *uint
}

// Overview builds the admin statistics page.
//
// Six independent queries run in parallel:
//  1. OrderTotals(period)        → Orders
//  2. ComplaintTotals(period)    → Complaints
//  3. OrdersPerMonth(year)       → OrdersPerMonth, all 12 months
//  4. ComplaintsPerMonth(year)   → ComplaintsPerMonth, all 12 months
//  5. TopCustomers(period, 10)   → TopCustomers
//  6. TopComplaintBrands(period) → TopBrands
func (uc *StatsUseCase) Overview(ctx context.Context, p entity.Principal, in OverviewFilter) (*dto.OverviewResponse, error) {
	if !p.IsAdmin() {
		uc.log.Warn().Str("actor", p.Actor()).Msg("statistics overview denied to non-admin")
		return nil, domain.ErrForbidden
	}
	if in.Year == 0 {
		in.Year = uc.clock.Today().Year()
	}
	if in.Month != nil && (*in.Month < 1 || *in.Month > 12) {
		return nil, domain.Invalid("month", "must be between 1 and 12")
	}
	period := repository.PeriodFilter{Year: in.Year, Month: in.Month}
	branchName := ""
	if in.BranchID != nil {
		b, err := uc.branches.GetByID(ctx, *in.BranchID)
		if err != nil {
			return nil, domain.Persistence("stats.Overview", err)
		}
		if b == nil {
			return nil, domain.ErrNotFound
		}
		period.BranchIDs = []uint{b.ID}
		branchName = b.Name
	}

	type ordersResult struct {
		counts repository.OrderCounts
		err    error
	}
	type complaintsResult struct {
		counts repository.ComplaintCounts
		err    error
	}
	type monthsResult struct {
		months []repository.MonthCount
		err    error
	}
	type namedResult struct {
		named []repository.NamedCount
		err   error
	}

	ordersCh := make(chan ordersResult, 1)
	complaintsCh := make(chan complaintsResult, 1)
	orderMonthsCh := make(chan monthsResult, 1)
	complaintMonthsCh := make(chan monthsResult, 1)
	customersCh := make(chan namedResult, 1)
	brandsCh := make(chan namedResult, 1)

	go func() {
		c, err := uc.stats.OrderTotals(ctx, period)
		ordersCh <- ordersResult{c, err}
	}()
	go func() {
		c, err := uc.stats.ComplaintTotals(ctx, period)
		complaintsCh <- complaintsResult{c, err}
	}()
	go func() {
		m, err := uc.stats.OrdersPerMonth(ctx, period)
		orderMonthsCh <- monthsResult{m, err}
	}()
	go func() {
		m, err := uc.stats.ComplaintsPerMonth(ctx, period)
		complaintMonthsCh <- monthsResult{m, err}
	}()
	go func() {
		n, err := uc.stats.TopCustomers(ctx, period, overviewTop)
		customersCh <- namedResult{n, err}
	}()
	go func() {
		n, err := uc.stats.TopComplaintBrands(ctx, period, overviewTop)
		brandsCh <- namedResult{n, err}
	}()

	orders := <-ordersCh
	complaints := <-complaintsCh
	orderMonths := <-orderMonthsCh
	complaintMonths := <-complaintMonthsCh
	customers := <-customersCh
	brands := <-brandsCh

	for _, err := range []error{orders.err, complaints.err, orderMonths.err, complaintMonths.err, customers.err, brands.err} {
		if err != nil {
			return nil, domain.Persistence("stats.Overview", fmt.Errorf("overview: %w", err))
		}
	}

	out := &dto.OverviewResponse{
		Year:               in.Year,
		Month:              in.Month,
		BranchID:           in.BranchID,
		Orders:             toOrderStats(orders.counts),
		Complaints:         toComplaintStats(complaints.counts),
		OrdersPerMonth:     fillMonths(orderMonths.months),
		ComplaintsPerMonth: fillMonths(complaintMonths.months),
		TopCustomers:       toNamed(customers.named),
		TopBrands:          toNamed(brands.named),
	}
	if in.BranchID != nil {
		out.Orders.BranchID, out.Orders.BranchName = *in.BranchID, branchName
		out.Complaints.BranchID, out.Complaints.BranchName = *in.BranchID, branchName
	}
	return out, nil
}

// fillMonths expands the sparse per-month counts into January..December.
func fillMonths(months []repository.MonthCount) []dto.MonthCountDTO {
	out := make([]dto.MonthCountDTO, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, m := range months {
		if m.Month >= 1 && m.Month <= 12 {
			out[m.Month-1].Count = m.Count
		}
	}
	return out
}

func toNamed(named []repository.NamedCount) []dto.NamedCountDTO {
	out := make([]dto.NamedCountDTO, 0, len(named))
	for _, n := range named {
		out = append(out, dto.NamedCountDTO{Name: n.Name, Count: n.Count})
	}
	return out
}
