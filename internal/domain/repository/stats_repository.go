package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderCounts raw per-branch order rollup. Status counts are limited to the
// requested year; Fresh and Stale split every active order regardless of year.
type OrderCounts struct {
	BranchID     uint
	Active       int64
	Issued       int64
	Unclaimed    int64
	Deleted      int64
	IssuedAmount decimal.Decimal
	Fresh        int64
	Stale        int64
}

// ComplaintCounts raw per-branch complaint rollup, archived complaints excluded.
type ComplaintCounts struct {
	BranchID      uint
	Pending       int64
	Exchanged     int64
	SentForRepair int64
	Rejected      int64
	Discounted    int64
}

// PeriodFilter restricts the admin overview. Nil Month means the whole year;
// empty BranchIDs means every branch.
type PeriodFilter struct {
	Year      int
	Month     *int
	BranchIDs []uint
}

// MonthCount rows in one month of the year.
type MonthCount struct {
	Month int
	Count int64
}

// NamedCount a label with its number of rows.
type NamedCount struct {
	Name  string
	Count int64
}

// StatsRepository read-only aggregations. The bulk methods group by branch in
// one query; the ForBranch methods are the degraded path used when a bulk
// query fails.
type StatsRepository interface {
	OrderCountsByBranch(ctx context.Context, branchIDs []uint, year int, freshCutoff time.Time) ([]OrderCounts, error)
	OrderCountsForBranch(ctx context.Context, branchID uint, year int, freshCutoff time.Time) (OrderCounts, error)

	ComplaintCountsByBranch(ctx context.Context, branchIDs []uint, year *int) ([]ComplaintCounts, error)
	ComplaintCountsForBranch(ctx context.Context, branchID uint, year *int) (ComplaintCounts, error)

	// OrderTotals and ComplaintTotals roll up a whole period across the
	// filtered branches; archived complaints are included.
	OrderTotals(ctx context.Context, f PeriodFilter) (OrderCounts, error)
	ComplaintTotals(ctx context.Context, f PeriodFilter) (ComplaintCounts, error)

	// OrdersPerMonth and ComplaintsPerMonth ignore f.Month and return only
	// months that have rows.
	OrdersPerMonth(ctx context.Context, f PeriodFilter) ([]MonthCount, error)
	ComplaintsPerMonth(ctx context.Context, f PeriodFilter) ([]MonthCount, error)
	TopCustomers(ctx context.Context, f PeriodFilter, limit int) ([]NamedCount, error)
	TopComplaintBrands(ctx context.Context, f PeriodFilter, limit int) ([]NamedCount, error)
}
