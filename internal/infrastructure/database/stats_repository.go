package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/branchdesk/branchdesk-api/internal/domain/entity"
	"github.com/branchdesk/branchdesk-api/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo read-only aggregations over orders and complaints.
// Year and month filters go through DatePartExpr so the same SQL runs on
// every supported dialect.
type StatsRepo struct {
	db *gorm.DB
}

// NewStatsRepository builds the repository.
func NewStatsRepository(db *gorm.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

type orderCountsRow struct {
	BranchID     uint
	Active       int64
	Issued       int64
	Unclaimed    int64
	Deleted      int64
	IssuedAmount decimal.Decimal
	Fresh        int64
	Stale        int64
}

type complaintCountsRow struct {
	BranchID      uint
	Pending       int64
	Exchanged     int64
	SentForRepair int64
	Rejected      int64
	Discounted    int64
}

type namedCountRow struct {
	Name  string
	Total int64
}

type monthCountRow struct {
	Month int
	Total int64
}

func (r *StatsRepo) dialect() string { return r.db.Dialector.Name() }

func countIf(cond string) string {
	return "COALESCE(SUM(CASE WHEN " + cond + " THEN 1 ELSE 0 END), 0)"
}

// orderCountsSQL builds the rollup; where is appended after FROM orders.
func (r *StatsRepo) orderCountsSQL(where string) string {
	year := DatePartEq(r.dialect(), "order_date", Year)
	return `
	SELECT
	    branch_id,
	    ` + countIf("status = ? AND "+year) + ` AS active,
	    ` + countIf("status = ? AND "+year) + ` AS issued,
	    ` + countIf("status = ? AND "+year) + ` AS unclaimed,
	    ` + countIf("status = ? AND "+year) + ` AS deleted,
	    COALESCE(SUM(CASE WHEN status = ? AND ` + year + ` THEN amount ELSE 0 END), 0) AS issued_amount,
	    ` + countIf("status = ? AND order_date >= ?") + ` AS fresh,
	    ` + countIf("status = ? AND order_date < ?") + ` AS stale
	FROM orders
	` + where
}

func orderCountsArgs(year int, cutoff time.Time) []interface{} {
	cutoff = asDate(cutoff)
	return []interface{}{
		string(entity.OrderActive), year,
		string(entity.OrderIssued), year,
		string(entity.OrderUnclaimed), year,
		string(entity.OrderDeleted), year,
		string(entity.OrderIssued), year,
		string(entity.OrderActive), cutoff,
		string(entity.OrderActive), cutoff,
	}
}

func (r *StatsRepo) OrderCountsByBranch(ctx context.Context, branchIDs []uint, year int, freshCutoff time.Time) ([]repository.OrderCounts, error) {
	if len(branchIDs) == 0 {
		return []repository.OrderCounts{}, nil
	}
	query := r.orderCountsSQL("WHERE branch_id IN ? GROUP BY branch_id")
	args := append(orderCountsArgs(year, freshCutoff), branchIDs)

	var rows []orderCountsRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("stats.OrderCountsByBranch: %w", err)
	}
	out := make([]repository.OrderCounts, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.OrderCounts(row))
	}
	return out, nil
}

func (r *StatsRepo) OrderCountsForBranch(ctx context.Context, branchID uint, year int, freshCutoff time.Time) (repository.OrderCounts, error) {
	query := r.orderCountsSQL("WHERE branch_id = ? GROUP BY branch_id")
	args := append(orderCountsArgs(year, freshCutoff), branchID)

	var rows []orderCountsRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return repository.OrderCounts{}, fmt.Errorf("stats.OrderCountsForBranch: %w", err)
	}
	if len(rows) == 0 {
		return repository.OrderCounts{BranchID: branchID}, nil
	}
	return repository.OrderCounts(rows[0]), nil
}

func (r *StatsRepo) complaintCountsSQL(where string) string {
	return `
	SELECT
	    branch_id,
	    ` + countIf("status = ?") + ` AS pending,
	    ` + countIf("status = ?") + ` AS exchanged,
	    ` + countIf("status = ?") + ` AS sent_for_repair,
	    ` + countIf("status = ?") + ` AS rejected,
	    ` + countIf("status = ? AND discount_percent IS NOT NULL") + ` AS discounted
	FROM complaints
	` + where
}

func complaintCountsArgs() []interface{} {
	return []interface{}{
		string(entity.ComplaintPending),
		string(entity.ComplaintExchanged),
		string(entity.ComplaintSentForRepair),
		string(entity.ComplaintRejected),
		string(entity.ComplaintRejected),
	}
}

// complaintWhere excludes archived complaints and applies the optional year on the received date.
func (r *StatsRepo) complaintWhere(branchCond string, year *int) (string, []interface{}) {
	conds := []string{"archived = ?", branchCond}
	args := []interface{}{false}
	if year != nil {
		conds = append(conds, DatePartEq(r.dialect(), "received_date", Year))
	}
	return "WHERE " + strings.Join(conds, " AND ") + " GROUP BY branch_id", args
}

func (r *StatsRepo) ComplaintCountsByBranch(ctx context.Context, branchIDs []uint, year *int) ([]repository.ComplaintCounts, error) {
	if len(branchIDs) == 0 {
		return []repository.ComplaintCounts{}, nil
	}
	where, whereArgs := r.complaintWhere("branch_id IN ?", year)
	args := append(complaintCountsArgs(), whereArgs...)
	args = append(args, branchIDs)
	if year != nil {
		args = append(args, *year)
	}

	var rows []complaintCountsRow
	if err := r.db.WithContext(ctx).Raw(r.complaintCountsSQL(where), args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("stats.ComplaintCountsByBranch: %w", err)
	}
	out := make([]repository.ComplaintCounts, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.ComplaintCounts(row))
	}
	return out, nil
}

func (r *StatsRepo) ComplaintCountsForBranch(ctx context.Context, branchID uint, year *int) (repository.ComplaintCounts, error) {
	where, whereArgs := r.complaintWhere("branch_id = ?", year)
	args := append(complaintCountsArgs(), whereArgs...)
	args = append(args, branchID)
	if year != nil {
		args = append(args, *year)
	}

	var rows []complaintCountsRow
	if err := r.db.WithContext(ctx).Raw(r.complaintCountsSQL(where), args...).Scan(&rows).Error; err != nil {
		return repository.ComplaintCounts{}, fmt.Errorf("stats.ComplaintCountsForBranch: %w", err)
	}
	if len(rows) == 0 {
		return repository.ComplaintCounts{BranchID: branchID}, nil
	}
	return repository.ComplaintCounts(rows[0]), nil
}

// periodWhere filters dateCol by year, optional month and optional branches.
func (r *StatsRepo) periodWhere(dateCol string, f repository.PeriodFilter) (string, []interface{}) {
	conds := []string{DatePartEq(r.dialect(), dateCol, Year)}
	args := []interface{}{f.Year}
	if f.Month != nil {
		conds = append(conds, DatePartEq(r.dialect(), dateCol, Month))
		args = append(args, *f.Month)
	}
	if len(f.BranchIDs) > 0 {
		conds = append(conds, "branch_id IN ?")
		args = append(args, f.BranchIDs)
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *StatsRepo) OrderTotals(ctx context.Context, f repository.PeriodFilter) (repository.OrderCounts, error) {
	where, args := r.periodWhere("order_date", f)
	query := `
	SELECT
	    ` + countIf("status = ?") + ` AS active,
	    ` + countIf("status = ?") + ` AS issued,
	    ` + countIf("status = ?") + ` AS unclaimed,
	    ` + countIf("status = ?") + ` AS deleted,
	    COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS issued_amount
	FROM orders ` + where
	all := append([]interface{}{
		string(entity.OrderActive), string(entity.OrderIssued), string(entity.OrderUnclaimed),
		string(entity.OrderDeleted), string(entity.OrderIssued),
	}, args...)

	var rows []orderCountsRow
	if err := r.db.WithContext(ctx).Raw(query, all...).Scan(&rows).Error; err != nil {
		return repository.OrderCounts{}, fmt.Errorf("stats.OrderTotals: %w", err)
	}
	if len(rows) == 0 {
		return repository.OrderCounts{}, nil
	}
	return repository.OrderCounts(rows[0]), nil
}

func (r *StatsRepo) ComplaintTotals(ctx context.Context, f repository.PeriodFilter) (repository.ComplaintCounts, error) {
	where, args := r.periodWhere("received_date", f)
	query := `
	SELECT
	    ` + countIf("status = ?") + ` AS pending,
	    ` + countIf("status = ?") + ` AS exchanged,
	    ` + countIf("status = ?") + ` AS sent_for_repair,
	    ` + countIf("status = ?") + ` AS rejected,
	    ` + countIf("status = ? AND discount_percent IS NOT NULL") + ` AS discounted
	FROM complaints ` + where

	var rows []complaintCountsRow
	if err := r.db.WithContext(ctx).Raw(query, append(complaintCountsArgs(), args...)...).Scan(&rows).Error; err != nil {
		return repository.ComplaintCounts{}, fmt.Errorf("stats.ComplaintTotals: %w", err)
	}
	if len(rows) == 0 {
		return repository.ComplaintCounts{}, nil
	}
	return repository.ComplaintCounts(rows[0]), nil
}

func (r *StatsRepo) OrdersPerMonth(ctx context.Context, f repository.PeriodFilter) ([]repository.MonthCount, error) {
	return r.perMonth(ctx, "stats.OrdersPerMonth", "orders", "order_date", f)
}

func (r *StatsRepo) ComplaintsPerMonth(ctx context.Context, f repository.PeriodFilter) ([]repository.MonthCount, error) {
	return r.perMonth(ctx, "stats.ComplaintsPerMonth", "complaints", "received_date", f)
}

func (r *StatsRepo) perMonth(ctx context.Context, op, table, dateCol string, f repository.PeriodFilter) ([]repository.MonthCount, error) {
	f.Month = nil
	month := DatePartExpr(r.dialect(), dateCol, Month)
	where, args := r.periodWhere(dateCol, f)
	query := "SELECT " + month + " AS month, COUNT(*) AS total FROM " + table + " " + where +
		" GROUP BY " + month + " ORDER BY month"

	var rows []monthCountRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]repository.MonthCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.MonthCount{Month: row.Month, Count: row.Total})
	}
	return out, nil
}

func (r *StatsRepo) TopCustomers(ctx context.Context, f repository.PeriodFilter, limit int) ([]repository.NamedCount, error) {
	where, args := r.periodWhere("order_date", f)
	query := "SELECT customer_name AS name, COUNT(*) AS total FROM orders " + where +
		" GROUP BY customer_name ORDER BY total DESC, name LIMIT ?"
	return r.named(ctx, "stats.TopCustomers", query, append(args, limit))
}

func (r *StatsRepo) TopComplaintBrands(ctx context.Context, f repository.PeriodFilter, limit int) ([]repository.NamedCount, error) {
	where, args := r.periodWhere("received_date", f)
	query := "SELECT brand AS name, COUNT(*) AS total FROM complaints " + where +
		" GROUP BY brand ORDER BY total DESC, name LIMIT ?"
	return r.named(ctx, "stats.TopComplaintBrands", query, append(args, limit))
}

func (r *StatsRepo) named(ctx context.Context, op, query string, args []interface{}) ([]repository.NamedCount, error) {
	var rows []namedCountRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]repository.NamedCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.NamedCount{Name: row.Name, Count: row.Total})
	}
	return out, nil
}
